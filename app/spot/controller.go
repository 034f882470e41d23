/* Apache v2 license
*  Copyright (C) <2022> SpotASpot
*
*  SPDX-License-Identifier: Apache-2.0
 */

package spot

import (
	"time"

	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	"github.com/pkg/errors"
	metrics "github.com/rcrowley/go-metrics"

	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/dbs"
	"github.com/Capstone-SpotASpot/Server-SpotASpot/pkg/web"
)

const spotCollection = "spots"

// Insert creates the spot a newly installed reader watches.
func Insert(dbs *dbs.DB, newSpot Spot) error {

	execFunc := func(collection *mgo.Collection) error {
		return collection.Insert(newSpot)
	}

	if err := dbs.Execute(spotCollection, execFunc); err != nil {
		return errors.Wrap(err, "db.spots.insert()")
	}

	return nil
}

// Claim atomically marks a free spot as occupied by carID. This is the
// first-writer-wins gate for concurrent park confirmations: the update
// matches only while is_occupied is false, so exactly one concurrent
// caller succeeds. Returns false (no error) when the spot was already
// taken.
func Claim(dbs *dbs.DB, spotID int, carID int) (bool, error) {

	metrics.GetOrRegisterGauge(`SpotASpot.Claim-Spot.Attempt`, nil).Update(1)
	mSuccess := metrics.GetOrRegisterGauge(`SpotASpot.Claim-Spot.Success`, nil)
	mRaceLost := metrics.GetOrRegisterGauge(`SpotASpot.Claim-Spot.Race-Lost`, nil)
	mClaimErr := metrics.GetOrRegisterGauge(`SpotASpot.Claim-Spot.Claim-Error`, nil)

	now := time.Now()
	selector := bson.M{"_id": spotID, "is_occupied": false}
	update := bson.M{"$set": bson.M{
		"is_occupied":    true,
		"parked_car_id":  carID,
		"occupied_since": now,
	}}

	execFunc := func(collection *mgo.Collection) error {
		return collection.Update(selector, update)
	}

	err := dbs.Execute(spotCollection, execFunc)
	if err == nil {
		mSuccess.Update(1)
		return true, nil
	}

	if err != mgo.ErrNotFound {
		mClaimErr.Update(1)
		return false, errors.Wrap(err, "db.spots.update()")
	}

	// not matched: either the spot does not exist or someone else
	// claimed it first
	if _, findErr := FindByID(dbs, spotID); findErr != nil {
		mClaimErr.Update(1)
		return false, errors.Wrapf(findErr, "spot %d not found while claiming", spotID)
	}

	mRaceLost.Update(1)
	return false, nil
}

// Release frees a spot. Administrative operation; there is no automatic
// departure detection.
func Release(dbs *dbs.DB, spotID int) error {

	update := bson.M{
		"$set":   bson.M{"is_occupied": false},
		"$unset": bson.M{"parked_car_id": "", "occupied_since": ""},
	}

	execFunc := func(collection *mgo.Collection) error {
		return collection.Update(bson.M{"_id": spotID}, update)
	}

	if err := dbs.Execute(spotCollection, execFunc); err != nil {
		if err == mgo.ErrNotFound {
			return web.ErrNotFound
		}
		return errors.Wrap(err, "db.spots.update()")
	}

	return nil
}

// FindByID retrieves one spot.
func FindByID(dbs *dbs.DB, spotID int) (Spot, error) {

	var found Spot

	execFunc := func(collection *mgo.Collection) error {
		return collection.Find(bson.M{"_id": spotID}).One(&found)
	}

	if err := dbs.Execute(spotCollection, execFunc); err != nil {
		if err == mgo.ErrNotFound {
			return Spot{}, web.ErrNotFound
		}
		return Spot{}, errors.Wrap(err, "db.spots.find()")
	}

	return found, nil
}

// StatusByReader returns the occupancy projection of every spot the
// given reader can see, keyed by spot id.
func StatusByReader(dbs *dbs.DB, readerID int) (map[int]Status, error) {

	var spots []Spot

	execFunc := func(collection *mgo.Collection) error {
		return collection.Find(bson.M{"reader_id": readerID}).All(&spots)
	}

	if err := dbs.Execute(spotCollection, execFunc); err != nil {
		return nil, errors.Wrap(err, "db.spots.find()")
	}

	if len(spots) == 0 {
		return nil, web.ErrNotFound
	}

	statuses := make(map[int]Status, len(spots))
	for _, item := range spots {
		statuses[item.ID] = Status{
			IsTaken:     item.IsOccupied,
			Latitude:    item.Latitude,
			Longitude:   item.Longitude,
			ParkedCarID: item.ParkedCarID,
		}
	}

	return statuses, nil
}
