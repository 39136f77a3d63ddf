package maintenance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RunAll(t *testing.T) {
	m := NewManager("*/15 * * * *")
	m.RegisterTask(TaskFunc{TaskName: "a", Func: func(ctx context.Context) (int, error) {
		return 3, nil
	}})
	m.RegisterTask(TaskFunc{TaskName: "b", Func: func(ctx context.Context) (int, error) {
		return 0, nil
	}})

	counts, err := m.RunAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 3, "b": 0}, counts)
}

func TestManager_RunAll_StopsOnError(t *testing.T) {
	var ran bool
	m := NewManager("*/15 * * * *")
	m.RegisterTask(TaskFunc{TaskName: "boom", Func: func(ctx context.Context) (int, error) {
		return 0, errors.New("db gone")
	}})
	m.RegisterTask(TaskFunc{TaskName: "after", Func: func(ctx context.Context) (int, error) {
		ran = true
		return 0, nil
	}})

	_, err := m.RunAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.False(t, ran, "tasks after a failure should not run")
}

func TestManager_StartScheduler_RequiresSchedule(t *testing.T) {
	m := NewManager("")
	err := m.StartScheduler(context.Background())
	require.Error(t, err)
}

func TestManager_StartScheduler_RejectsBadExpression(t *testing.T) {
	m := NewManager("not a cron line")
	m.RegisterTask(TaskFunc{TaskName: "noop", Func: func(ctx context.Context) (int, error) {
		return 0, nil
	}})

	err := m.StartScheduler(context.Background())
	require.Error(t, err)
}
