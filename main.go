/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/globalsign/mgo"
	"github.com/pkg/errors"
	metrics "github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"

	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/config"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/detection"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/eventstore"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/routes"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/dbs"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/healthcheck"
)

func main() {

	mDBIndexesError := metrics.GetOrRegisterGauge("SpotASpot.Main.DBIndexesError", nil)
	mConfigurationError := metrics.GetOrRegisterGauge("SpotASpot.Main.ConfigurationError", nil)
	mDatabaseRegisterError := metrics.GetOrRegisterGauge("SpotASpot.Main.DatabaseRegisterError", nil)

	// Ensure simple text format
	log.SetFormatter(&log.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})

	// Load config variables
	err := config.InitConfig()
	fatalErrorHandler("unable to load configuration variables", err, &mConfigurationError)

	// Docker HEALTHCHECK probe
	isHealthyPtr := flag.Bool("isHealthy", false, "a bool, runs a healthcheck")
	flag.Parse()
	if *isHealthyPtr {
		os.Exit(healthcheck.Healthcheck(config.AppConfig.Port))
	}

	// Initialize metrics reporting
	initMetrics()

	setLoggingLevel(config.AppConfig.LoggingLevel)

	log.WithFields(log.Fields{
		"Method": "main",
		"Action": "Start",
	}).Info("Starting SpotASpot server...")

	// Connect to mongodb
	log.WithFields(log.Fields{
		"Method": "main",
		"Action": "Start",
		"Host":   config.AppConfig.DbHost,
	}).Info("Registering a new master db...")

	dbTimeout := time.Duration(config.AppConfig.DbTimeoutSeconds) * time.Second
	masterDB, err := dbs.NewSession(config.AppConfig.DbHost, config.AppConfig.DbName, dbTimeout)
	fatalErrorHandler("Unable to register a new master db.", err, &mDatabaseRegisterError)

	// Close master db
	defer masterDB.Close()

	// Prepares database indexes
	prepDBErr := prepareDB(masterDB)
	errorHandler("error creating indexes", prepDBErr, &mDBIndexesError)

	window := time.Duration(config.AppConfig.CorroborationWindowSeconds) * time.Second
	store := eventstore.New(masterDB, window)
	engine := detection.NewEngine(store)

	// Initiate webserver and routes
	startWebServer(masterDB, engine, store, config.AppConfig.Port, config.AppConfig.ResponseLimit, config.AppConfig.ServiceName)

	log.WithField("Method", "main").Info("Completed.")
}

func startWebServer(masterDB *dbs.DB, engine *detection.Engine, store *eventstore.Store, port string, responseLimit int, serviceName string) {

	// Start Webserver and pass additional data
	router := routes.NewRouter(masterDB, engine, store, responseLimit)

	// Create a new server and set timeout values.
	server := http.Server{
		Addr:           ":" + port,
		Handler:        router,
		ReadTimeout:    time.Duration(config.AppConfig.ServerReadTimeOutSeconds) * time.Second,
		WriteTimeout:   time.Duration(config.AppConfig.ServerWriteTimeOutSeconds) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// We want to report the listener is closed.
	var wg sync.WaitGroup
	wg.Add(1)

	// Start the listener.
	go func() {
		log.Infof("%s running!", serviceName)
		log.Infof("Listener closed : %v", server.ListenAndServe())
		wg.Done()
	}()

	// Listen for an interrupt signal from the OS.
	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, os.Interrupt)

	// Wait for a signal to shutdown.
	<-osSignals

	// Create a context to attempt a graceful 5 second shutdown.
	const timeout = 5 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Attempt the graceful shutdown by closing the listener and
	// completing all inflight requests.
	if err := server.Shutdown(ctx); err != nil {

		log.WithFields(log.Fields{
			"Method":  "main",
			"Action":  "shutdown",
			"Timeout": timeout,
			"Message": err.Error(),
		}).Error("Graceful shutdown did not complete")

		// Looks like we timedout on the graceful shutdown. Kill it hard.
		if err := server.Close(); err != nil {
			log.WithFields(log.Fields{
				"Method":  "main",
				"Action":  "shutdown",
				"Message": err.Error(),
			}).Error("Error killing server")
		}
	}

	// Wait for the listener to report it is closed.
	wg.Wait()
}

// prepareDB prepares the database with indexes
func prepareDB(masterDB *dbs.DB) error {

	indexes := make(map[string][]mgo.Index)

	// corroboration queries hit observations by reader and tag within
	// the window, and tombstoning filters on is_relevant
	indexes["observations"] = []mgo.Index{
		{
			Key:        []string{"reader_id", "tag_id"},
			Unique:     false,
			DropDups:   false,
			Background: false,
		},
		{
			Key:        []string{"is_relevant"},
			Unique:     false,
			DropDups:   false,
			Background: false,
		},
		{
			Key:        []string{"time_observed"},
			Unique:     false,
			DropDups:   false,
			Background: false,
		},
	}
	// one spot per reader
	indexes["spots"] = []mgo.Index{
		{
			Key:        []string{"reader_id"},
			Unique:     true,
			DropDups:   false,
			Background: false,
		},
	}
	indexes["detections"] = []mgo.Index{
		{
			Key:        []string{"car_id"},
			Unique:     false,
			DropDups:   false,
			Background: false,
		},
	}

	for collectionName, collectionIndexes := range indexes {

		for _, index := range collectionIndexes {
			index := index
			execFuncAddIndex := func(collection *mgo.Collection) error {
				log.Infof("Adding Index %s to collection %s.", index.Key[0], collection.Name)
				return collection.EnsureIndex(index)
			}

			execFuncDropIndex := func(collection *mgo.Collection) error {
				log.Infof("Dropping Index %s from collection %s in order to recreate it.", index.Key[0], collection.Name)
				return collection.DropIndex(index.Key...)
			}

			if err := masterDB.Execute(collectionName, execFuncAddIndex); err != nil {
				// Couldn't add the index so drop it and try to add it again, if that doesn't work exit.
				log.Errorf("Unable to add Index %v to collection %s %s", index, collectionName, err.Error())

				// try to drop the index
				if err := masterDB.Execute(collectionName, execFuncDropIndex); err != nil {
					log.Errorf("Unable to drop Index %v to collection %s %s", index, collectionName, err.Error())
				}

				// try to add the index after it's been dropped
				if err := masterDB.Execute(collectionName, execFuncAddIndex); err != nil {
					return errors.Wrapf(err, "Unable to add Index %v to collection %s", index, collectionName)
				}
			}
		}
	}
	log.WithFields(log.Fields{
		"Method": "config.PrepareDB",
		"Action": "Start",
	}).Info("Prepared database indexes...")

	return nil
}

func initMetrics() {
	// setup metrics reporting
	if config.AppConfig.TelemetryLogIntervalSeconds > 0 {
		interval := time.Duration(config.AppConfig.TelemetryLogIntervalSeconds) * time.Second
		go metrics.Log(metrics.DefaultRegistry, interval, log.StandardLogger())
	}
}
