package main

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Environment string `mapstructure:"ENVIRONMENT"`

	// SessionSecret signs the session cookie; DBDSN points at the database.
	// Both are mandatory: running without them would mean running insecurely
	// or without storage, so startup fails fast instead.
	SessionSecret string `mapstructure:"SESSION_SECRET"`
	DBDSN         string `mapstructure:"DB_DSN"`

	MailHost     string `mapstructure:"MAIL_HOST"`
	MailPort     int    `mapstructure:"MAIL_PORT"`
	MailUser     string `mapstructure:"MAIL_USER"`
	MailPassword string `mapstructure:"MAIL_PASSWORD"`
	MailSender   string `mapstructure:"MAIL_SENDER"`
	MailOwner    string `mapstructure:"MAIL_OWNER"`

	MQHost     string `mapstructure:"RABBITMQ_HOST"`
	MQPort     string `mapstructure:"RABBITMQ_PORT"`
	MQUser     string `mapstructure:"RABBITMQ_USER"`
	MQPassword string `mapstructure:"RABBITMQ_PASSWORD"`
}

func loadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET must be set")
	}

	if config.DBDSN == "" {
		return nil, errors.New("DB_DSN must be set")
	}

	if config.Port == "" {
		config.Port = ":8080"
	}

	return &config, nil
}
