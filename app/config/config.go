/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	maxServerReadTimeoutSeconds  = 1800
	maxServerWriteTimeoutSeconds = 1800
)

type (
	variables struct {
		ServiceName, LoggingLevel, Port string
		DbHost, DbName                  string
		DbTimeoutSeconds                int

		// Time span within which independent tag sightings are treated
		// as part of the same physical parking event.
		CorroborationWindowSeconds int

		ServerReadTimeOutSeconds  int
		ServerWriteTimeOutSeconds int
		ResponseLimit             int

		TelemetryLogIntervalSeconds int

		EnableCORS bool
		CORSOrigin string
	}
)

// AppConfig exports all config variables
var AppConfig variables

// InitConfig loads application variables from the environment, reading
// a .env file first when one is present.
func InitConfig() error {
	AppConfig = variables{}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithFields(log.Fields{
			"Method": "config.InitConfig",
			"Error":  err.Error(),
		}).Warn("unable to load .env file")
	}

	var err error

	AppConfig.ServiceName = getOrDefaultString("serviceName", "spotaspot-server")
	AppConfig.LoggingLevel = getOrDefaultString("loggingLevel", "info")
	AppConfig.Port = getOrDefaultString("port", "31025")

	AppConfig.DbHost = getOrDefaultString("dbHost", "localhost:27017")
	AppConfig.DbName = getOrDefaultString("dbName", "spotaspot")

	AppConfig.DbTimeoutSeconds, err = getOrDefaultInt("dbTimeoutSeconds", 5)
	if err != nil {
		return errors.Wrapf(err, "unable to load config variables: %s", err.Error())
	}

	AppConfig.CorroborationWindowSeconds, err = getOrDefaultInt("corroborationWindowSeconds", 300)
	if err != nil {
		return errors.Wrapf(err, "unable to load config variables: %s", err.Error())
	}
	if AppConfig.CorroborationWindowSeconds < 1 {
		return errors.New("corroborationWindowSeconds cannot be lesser than 1")
	}

	AppConfig.ServerReadTimeOutSeconds, err = getOrDefaultInt("serverReadTimeOutSeconds", 900)
	if err != nil {
		return errors.Wrapf(err, "unable to load config variables: %s", err.Error())
	}
	if AppConfig.ServerReadTimeOutSeconds > maxServerReadTimeoutSeconds {
		return errors.Errorf("serverReadTimeOutSeconds cannot exceed %d", maxServerReadTimeoutSeconds)
	}

	AppConfig.ServerWriteTimeOutSeconds, err = getOrDefaultInt("serverWriteTimeOutSeconds", 900)
	if err != nil {
		return errors.Wrapf(err, "unable to load config variables: %s", err.Error())
	}
	if AppConfig.ServerWriteTimeOutSeconds > maxServerWriteTimeoutSeconds {
		return errors.Errorf("serverWriteTimeOutSeconds cannot exceed %d", maxServerWriteTimeoutSeconds)
	}

	AppConfig.ResponseLimit, err = getOrDefaultInt("responseLimit", 10000)
	if err != nil {
		return errors.Wrapf(err, "unable to load config variables: %s", err.Error())
	}

	AppConfig.TelemetryLogIntervalSeconds, err = getOrDefaultInt("telemetryLogIntervalSeconds", 0)
	if err != nil {
		return errors.Wrapf(err, "unable to load config variables: %s", err.Error())
	}

	AppConfig.EnableCORS = getOrDefaultBool("enableCORS", false)
	AppConfig.CORSOrigin = getOrDefaultString("corsOrigin", "*")

	return nil
}

func getOrDefaultString(path string, defaultValue string) string {
	if value, exists := os.LookupEnv(path); exists {
		return value
	}
	return defaultValue
}

func getOrDefaultInt(path string, defaultValue int) (int, error) {
	value, exists := os.LookupEnv(path)
	if !exists {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "config variable %s is not an integer", path)
	}
	return parsed, nil
}

func getOrDefaultBool(path string, defaultValue bool) bool {
	value, exists := os.LookupEnv(path)
	if !exists {
		return defaultValue
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
