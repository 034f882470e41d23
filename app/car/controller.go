/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package car

import (
	"time"

	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	"github.com/pkg/errors"
	metrics "github.com/rcrowley/go-metrics"

	"github.com/Capstone-SpotASpot/Server-SpotASpot/app/tag"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/dbs"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/web"
)

const carCollection = "cars"

// Insert registers a car from three distinct, previously issued tag
// ids. Returns the new car id.
func Insert(dbs *dbs.DB, ownerID int, frontTag int, middleTag int, rearTag int) (int, error) {

	metrics.GetOrRegisterGauge(`SpotASpot.Insert-Car.Attempt`, nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge(`SpotASpot.Insert-Car.Success`, nil)
	mInsertErr := metrics.GetOrRegisterGauge(`SpotASpot.Insert-Car.Insert-Error`, nil)
	mInputErr := metrics.GetOrRegisterGauge(`SpotASpot.Insert-Car.Input-Error`, nil)
	mInsertLatency := metrics.GetOrRegisterTimer(`SpotASpot.Insert-Car.Insert-Latency`, nil)

	if frontTag == middleTag || frontTag == rearTag || middleTag == rearTag {
		mInputErr.Update(1)
		return -1, errors.Wrap(web.ErrInvalidInput, "a car's three tag ids must be distinct")
	}

	for _, tagID := range []int{frontTag, middleTag, rearTag} {
		issued, err := tag.Exists(dbs, tagID)
		if err != nil {
			return -1, errors.Wrap(err, "unable to verify tag registration")
		}
		if !issued {
			mInputErr.Update(1)
			return -1, errors.Wrapf(web.ErrInvalidInput, "tag %d has not been issued", tagID)
		}
	}

	// each tag may belong to at most one car
	taken, err := anyTagInUse(dbs, []int{frontTag, middleTag, rearTag})
	if err != nil {
		return -1, err
	}
	if taken {
		mInputErr.Update(1)
		return -1, errors.Wrap(web.ErrInvalidInput, "one of the tags already belongs to a car")
	}

	carID, err := dbs.NextSequence(carCollection)
	if err != nil {
		mInsertErr.Update(1)
		return -1, errors.Wrap(err, "unable to allocate car id")
	}

	newCar := Car{
		ID:          carID,
		OwnerID:     ownerID,
		FrontTagID:  frontTag,
		MiddleTagID: middleTag,
		RearTagID:   rearTag,
	}

	execFunc := func(collection *mgo.Collection) error {
		return collection.Insert(newCar)
	}

	insertTimer := time.Now()
	if err := dbs.Execute(carCollection, execFunc); err != nil {
		mInsertErr.Update(1)
		return -1, errors.Wrap(err, "db.cars.insert()")
	}
	mInsertLatency.Update(time.Since(insertTimer))

	mSuccess.Update(1)
	return carID, nil
}

// FindByTag resolves the car a tag is mounted on.
func FindByTag(dbs *dbs.DB, tagID int) (Car, error) {

	var found Car

	selector := bson.M{"$or": []bson.M{
		{"front_tag": tagID},
		{"middle_tag": tagID},
		{"rear_tag": tagID},
	}}

	execFunc := func(collection *mgo.Collection) error {
		return collection.Find(selector).One(&found)
	}

	if err := dbs.Execute(carCollection, execFunc); err != nil {
		if err == mgo.ErrNotFound {
			return Car{}, web.ErrNotFound
		}
		return Car{}, errors.Wrap(err, "db.cars.find()")
	}

	return found, nil
}

// FindByID retrieves a car by its id.
func FindByID(dbs *dbs.DB, carID int) (Car, error) {

	var found Car

	execFunc := func(collection *mgo.Collection) error {
		return collection.Find(bson.M{"_id": carID}).One(&found)
	}

	if err := dbs.Execute(carCollection, execFunc); err != nil {
		if err == mgo.ErrNotFound {
			return Car{}, web.ErrNotFound
		}
		return Car{}, errors.Wrap(err, "db.cars.find()")
	}

	return found, nil
}

func anyTagInUse(dbs *dbs.DB, tagIDs []int) (bool, error) {

	var count int
	var err error

	selector := bson.M{"$or": []bson.M{
		{"front_tag": bson.M{"$in": tagIDs}},
		{"middle_tag": bson.M{"$in": tagIDs}},
		{"rear_tag": bson.M{"$in": tagIDs}},
	}}

	execFunc := func(collection *mgo.Collection) error {
		count, err = collection.Find(selector).Count()
		return err
	}

	if err := dbs.Execute(carCollection, execFunc); err != nil {
		return false, errors.Wrap(err, "db.cars.count()")
	}

	return count > 0, nil
}
