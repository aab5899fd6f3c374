package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tunga-io/tunga/internal/db"
	"github.com/tunga-io/tunga/server/common"
)

var TokenCmd = &cobra.Command{
	Use:   "token <username>",
	Short: "Print a bearer token for an existing user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		Init()
		defer Release()
		user, err := db.GetUserByName(args[0])
		if err != nil {
			log.Errorf("failed to get user %s: %+v", args[0], err)
			return
		}
		token, err := common.GenerateToken(user)
		if err != nil {
			log.Errorf("failed to generate token: %+v", err)
			return
		}
		fmt.Println(token)
	},
}

func init() {
	RootCmd.AddCommand(TokenCmd)
}
