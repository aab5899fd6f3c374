package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tunga-io/tunga/internal/conf"
	"github.com/tunga-io/tunga/internal/op"
)

var loop bool

var SendUpdatesCmd = &cobra.Command{
	Use:   "send-updates",
	Short: "Remind task owners about due milestones",
	Run: func(cmd *cobra.Command, args []string) {
		Init()
		defer Release()
		if !loop {
			sweep(context.Background())
			return
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		sweepLoop(ctx, conf.Conf.Reminder.Interval.Std())
	},
}

func sweep(ctx context.Context) {
	res, err := op.SendDueReminders(ctx, time.Now())
	if err != nil {
		log.Errorf("reminder sweep failed: %+v", err)
		return
	}
	log.Debugf("reminder sweep done: %d due, %d sent, %d failed", res.Due, res.Sent, res.Failed)
}

// sweepLoop sweeps immediately and then every interval until ctx is done.
func sweepLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		log.Warnf("reminder interval is %s, sweep loop disabled", interval)
		return
	}
	sweep(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweep(ctx)
		}
	}
}

func init() {
	SendUpdatesCmd.Flags().BoolVar(&loop, "loop", false, "keep sweeping on the configured interval")
	RootCmd.AddCommand(SendUpdatesCmd)
}
