package bootstrap

import (
	log "github.com/sirupsen/logrus"

	"github.com/tunga-io/tunga/drivers/mobbr"
	"github.com/tunga-io/tunga/internal/conf"
	"github.com/tunga-io/tunga/internal/job"
	"github.com/tunga-io/tunga/internal/notify"
	"github.com/tunga-io/tunga/internal/op"
	"github.com/tunga-io/tunga/internal/share"
)

// InitCollaborators wires the mailer and the script source into the
// workflows.
func InitCollaborators() {
	mailer, err := notify.New(conf.Conf.Mail)
	if err != nil {
		log.Fatalf("failed init mailer: %+v", err)
	}
	op.SetMailer(mailer)
	job.Mailer = mailer

	var src share.Source
	if conf.Conf.Script.Enabled && conf.Conf.Script.Endpoint != "" {
		src = mobbr.New(conf.Conf.Script)
	}
	op.SetResolver(share.NewResolver(conf.Conf.Share, src))
	log.Infof("mail transport: %s, script lookup enabled: %t", conf.Conf.Mail.Transport, src != nil)
}
