package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mimicbot/pkg/session"
)

func TestStartInvalidCron(t *testing.T) {
	reg := session.NewRegistry(nil, nil, time.Minute)
	_, err := Start(context.Background(), reg, "not a cron")
	require.Error(t, err)
}

func TestStartAndCancel(t *testing.T) {
	reg := session.NewRegistry(nil, nil, time.Minute)
	cancel, err := Start(context.Background(), reg, "*/5 * * * *")
	require.NoError(t, err)
	cancel()
}

func TestRunOnceSweepsExpired(t *testing.T) {
	reg := session.NewRegistry(nil, nil, time.Millisecond)
	require.NoError(t, reg.Bind("m1", "ch", "global", "", "text"))
	time.Sleep(5 * time.Millisecond)

	runOnce(reg)
	require.Equal(t, 0, reg.Len())
}
