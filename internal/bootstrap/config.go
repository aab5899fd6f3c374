package bootstrap

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v9"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tunga-io/tunga/cmd/flags"
	"github.com/tunga-io/tunga/internal/conf"
	"github.com/tunga-io/tunga/pkg/utils"
)

func InitConfig() {
	dataDir, err := filepath.Abs(flags.DataDir)
	if err != nil {
		log.Fatalf("invalid data dir: %+v", err)
	}
	configPath := filepath.Join(dataDir, "config.json")
	log.Infof("reading config file: %s", configPath)
	conf.Conf = conf.DefaultConfig(dataDir)
	if !utils.Exists(configPath) {
		log.Infof("config file not exists, creating default config file")
		_, err := utils.CreateNestedFile(configPath)
		if err != nil {
			log.Fatalf("failed to create config file: %+v", err)
		}
		if !utils.WriteJsonToFile(configPath, conf.Conf) {
			log.Fatalf("failed to create default config file")
		}
	} else {
		configBytes, err := os.ReadFile(configPath)
		if err != nil {
			log.Fatalf("reading config file error: %+v", err)
		}
		err = utils.Json.Unmarshal(configBytes, conf.Conf)
		if err != nil {
			log.Fatalf("load config error: %+v", err)
		}
		// write back so new fields show up in the file
		if !utils.WriteJsonToFile(configPath, conf.Conf) {
			log.Fatalf("failed to update config file")
		}
	}
	if !conf.Conf.Force {
		confFromEnv()
	}
	if conf.Conf.JwtSecret == "" {
		conf.Conf.JwtSecret = strings.ReplaceAll(uuid.NewString(), "-", "")
		if !utils.WriteJsonToFile(configPath, conf.Conf) {
			log.Fatalf("failed to persist jwt secret")
		}
	}
	convertAbsPath(dataDir, &conf.Conf.Database.DBFile)
	convertAbsPath(dataDir, &conf.Conf.Log.Name)
	if conf.Conf.Scheme.SiteURL == "" {
		conf.Conf.Scheme.SiteURL = conf.Conf.SiteURL
	}
	log.Debugf("config: %+v", conf.Conf)
}

func convertAbsPath(dataDir string, path *string) {
	if *path != "" && !filepath.IsAbs(*path) {
		*path = filepath.Join(dataDir, *path)
	}
}

func confFromEnv() {
	prefix := "TUNGA_"
	log.Infof("load config from env with prefix: %s", prefix)
	if err := env.ParseWithOptions(conf.Conf, env.Options{
		Prefix: prefix,
	}); err != nil {
		log.Fatalf("load config from env error: %+v", err)
	}
}
