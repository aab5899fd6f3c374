package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tunga-io/tunga/cmd/flags"
	"github.com/tunga-io/tunga/internal/conf"
	"github.com/tunga-io/tunga/server"
)

var ServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the API server and the reminder sweep",
	Run: func(cmd *cobra.Command, args []string) {
		Init()
		defer Release()
		if !flags.Debug && !flags.Dev {
			gin.SetMode(gin.ReleaseMode)
		}
		r := gin.New()
		r.Use(gin.LoggerWithWriter(log.StandardLogger().Out), gin.RecoveryWithWriter(log.StandardLogger().Out))
		server.Init(r)

		addr := fmt.Sprintf("%s:%d", conf.Conf.Scheme.Address, conf.Conf.Scheme.HttpPort)
		srv := &http.Server{Addr: addr, Handler: r}
		errCh := make(chan error, 1)
		go func() {
			log.Infof("start HTTP server @ %s", addr)
			errCh <- srv.ListenAndServe()
		}()

		ctx, cancel := context.WithCancel(context.Background())
		sweepDone := make(chan struct{})
		go func() {
			defer close(sweepDone)
			sweepLoop(ctx, conf.Conf.Reminder.Interval.Std())
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)
		select {
		case sig := <-quit:
			log.Infof("signal %s received, shutting down", sig)
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("failed to start http: %s", err.Error())
			}
		}
		cancel()
		<-sweepDone

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*10)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("shutdown error: %v", err)
		}
		log.Println("server exit")
	},
}

func init() {
	RootCmd.AddCommand(ServerCmd)
}
