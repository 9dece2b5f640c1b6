package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder
	s := r.Summary

	// Header
	sb.WriteString("# Session Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Session: `%s` | Rounds: %d\n\n", r.SessionID, s.Rounds))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Starting Capital | $%.2f |\n", s.StartingCapital))
	sb.WriteString(fmt.Sprintf("| Final Capital | $%.2f |\n", s.FinalCapital))
	sb.WriteString(fmt.Sprintf("| Total Earnings | $%.2f |\n", s.TotalEarnings))
	sb.WriteString(fmt.Sprintf("| Best Round | #%d ($%.2f) |\n", s.BestRound, s.BestReward))
	sb.WriteString(fmt.Sprintf("| Worst Round | #%d ($%.2f) |\n", s.WorstRound, s.WorstReward))
	sb.WriteString(fmt.Sprintf("| Losing Rounds | %d |\n", s.LosingRounds))
	sb.WriteString(fmt.Sprintf("| Slashing Events | %d |\n", s.SlashingEvents))
	sb.WriteString(fmt.Sprintf("| Tasks Succeeded | %d |\n", s.TasksSucceeded))
	sb.WriteString(fmt.Sprintf("| Tasks Failed | %d |\n", s.TasksFailed))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %.2f%% |\n", s.MaxDrawdown*100))
	if s.FinalTrust != nil {
		sb.WriteString(fmt.Sprintf("| Operator Trust | %.1f |\n", *s.FinalTrust))
	}
	sb.WriteString("\n")

	if s.GameOver {
		sb.WriteString("**Game over.** The session ended with no capital left.\n\n")
	}

	// Rounds
	sb.WriteString("## Rounds\n\n")
	sb.WriteString("| Round | Vaults | Tasks | Total | Capital | Slashes | Tasks OK | Tasks Failed |\n")
	sb.WriteString("|-------|--------|-------|-------|---------|---------|----------|--------------|\n")
	for _, row := range r.Rounds {
		sb.WriteString(fmt.Sprintf("| %d | %.2f | %.2f | %.2f | %.2f | %d | %d | %d |\n",
			row.Round, row.VaultRewards, row.TaskRewards, row.TotalReward, row.CapitalAfter,
			row.SlashingEvents, row.TasksSucceeded, row.TasksFailed))
	}
	sb.WriteString("\n")

	// Networks
	sb.WriteString("## Networks\n\n")
	if len(r.Networks) > 0 {
		sb.WriteString("| Network | Final Stake | Target | Mean Mining Rate | Over-staked Rounds | Trust |\n")
		sb.WriteString("|---------|-------------|--------|------------------|--------------------|-------|\n")
		for _, n := range r.Networks {
			sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %.4f | %d | %.0f |\n",
				n.NetworkID, n.FinalStake, n.TargetStake, n.MeanMiningRate, n.OverStakedRounds, n.TrustScore))
		}
	} else {
		sb.WriteString("No network snapshots available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
