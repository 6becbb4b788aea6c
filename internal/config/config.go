package config

import (
	"github.com/ilyakaznacheev/cleanenv"
	"log"
	"sync"
)

type Config struct {
	IsDebug  bool   `yaml:"is_debug" env-default:"false"`
	TimeZone string `yaml:"time_zone" env-default:"UTC"`
	Listen   struct {
		BindIP   string `yaml:"bind_ip" env-default:"0.0.0.0"`
		Port     string `yaml:"port" env-default:"5000"`
		TLS      bool   `yaml:"tls_enabled" env-default:"false"`
		CertFile string `yaml:"cert_file" env-default:""`
		KeyFile  string `yaml:"key_file" env-default:""`
	} `yaml:"listen"`
	Merchant struct {
		Id          string `yaml:"id" env:"MERCHANT_ID"`
		Key         string `yaml:"key" env:"MERCHANT_KEY"`
		Environment string `yaml:"environment" env-default:"sandbox"`
		Currency    string `yaml:"currency" env-default:"USD"`
	} `yaml:"merchant"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"localhost"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:""`
		Password string `yaml:"password" env-default:""`
		Database string `yaml:"database" env-default:"gocheckout"`
	} `yaml:"mongo"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" env-default:"false"`
		BindIP  string `yaml:"bind_ip" env-default:"0.0.0.0"`
		Port    string `yaml:"port" env-default:"9100"`
	} `yaml:"metrics"`
	Telegram struct {
		Enabled bool   `yaml:"enabled" env-default:"false"`
		ApiKey  string `yaml:"api_key" env:"TELEGRAM_API_KEY"`
	} `yaml:"telegram"`
}

var instance *Config
var once sync.Once

func GetConfig() (*Config, error) {
	var err error
	once.Do(func() {
		log.Println("reading config")
		instance = &Config{}
		if err = cleanenv.ReadConfig("config.yml", instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			log.Println(desc)
			log.Println(err)
			instance = nil
		}
	})
	return instance, err
}
