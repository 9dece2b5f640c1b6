package clickhouse

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const snapshotImage = "clickhouse/clickhouse-server:24.8-alpine"

// newTestConn starts a throwaway ClickHouse with the snapshot table created.
// The container is removed when the test ends.
func newTestConn(t *testing.T) *Conn {
	t.Helper()
	if testing.Short() {
		t.Skip("clickhouse snapshot tests need docker; skipped with -short")
	}
	ctx := context.Background()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        snapshotImage,
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"CLICKHOUSE_DB":       "ledger",
				"CLICKHOUSE_USER":     "ledger",
				"CLICKHOUSE_PASSWORD": "ledger",
			},
			WaitingFor: wait.ForListeningPort("9000/tcp").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("terminate clickhouse: %v", err)
		}
	})

	endpoint, err := ctr.PortEndpoint(ctx, "9000/tcp", "")
	require.NoError(t, err)

	conn, err := NewConn(ctx, fmt.Sprintf("clickhouse://ledger:ledger@%s/ledger", endpoint))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	createTables(t, conn)
	return conn
}

// createTables runs the SQL files under internal/storage/migrations/clickhouse
// one statement at a time. The migrations package imports this one, so the
// files are read from disk.
func createTables(t *testing.T, conn *Conn) {
	t.Helper()

	schema := os.DirFS(filepath.Join("..", "migrations", "clickhouse"))
	files, err := fs.Glob(schema, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files, "no clickhouse migrations found")

	for _, name := range files {
		body, err := fs.ReadFile(schema, name)
		require.NoError(t, err)
		for _, stmt := range strings.Split(string(body), ";") {
			if stmt = withoutComments(stmt); stmt == "" {
				continue
			}
			require.NoError(t, conn.Exec(context.Background(), stmt), "apply %s", name)
		}
	}
}

func withoutComments(sql string) string {
	var b strings.Builder
	for _, line := range strings.Split(sql, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}
