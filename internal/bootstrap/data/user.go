package data

import (
	"os"

	"github.com/tunga-io/tunga/internal/conf"
	"github.com/tunga-io/tunga/internal/db"
	"github.com/tunga-io/tunga/internal/errs"
	"github.com/tunga-io/tunga/internal/model"
	"github.com/tunga-io/tunga/pkg/utils"
)

// initUser seeds the staff account on an empty database. Everyone else is
// mirrored from the identity provider.
func initUser() {
	admin, err := db.GetUserByName("admin")
	if err == nil {
		utils.Log.Debugf("admin user exists: %d", admin.ID)
		return
	}
	if !errs.IsObjectNotFound(err) {
		utils.Log.Fatalf("[init user] failed get admin user: %v", err)
	}
	email := conf.Conf.Share.PlatformEmail
	if v := os.Getenv("TUNGA_ADMIN_EMAIL"); v != "" {
		email = v
	}
	admin = &model.User{
		Username:  "admin",
		Email:     email,
		FirstName: "Tunga",
		Type:      model.UserTypeProjectOwner,
		IsStaff:   true,
	}
	if err := db.CreateUser(admin); err != nil {
		utils.Log.Fatalf("[init user] failed create admin user: %v", err)
	}
	utils.Log.Infof("Successfully created the admin user (id %d); mint a token with `tunga token admin`", admin.ID)
}
