package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders round rows as CSV string.
func RenderCSV(rows []RoundRow) string {
	var sb strings.Builder

	// Header
	sb.WriteString("round,vault_rewards,task_rewards,total_reward,capital_after,")
	sb.WriteString("slashing_events,tasks_succeeded,tasks_failed,operator_trust,game_over\n")

	for _, r := range rows {
		trust := ""
		if r.OperatorTrust != nil {
			trust = fmt.Sprintf("%.2f", *r.OperatorTrust)
		}
		sb.WriteString(fmt.Sprintf("%d,%.6f,%.6f,%.6f,%.6f,%d,%d,%d,%s,%t\n",
			r.Round,
			r.VaultRewards,
			r.TaskRewards,
			r.TotalReward,
			r.CapitalAfter,
			r.SlashingEvents,
			r.TasksSucceeded,
			r.TasksFailed,
			trust,
			r.GameOver,
		))
	}

	return sb.String()
}
