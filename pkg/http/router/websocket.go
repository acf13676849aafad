package router

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/julienschmidt/httprouter"
	"github.com/pandu-nav/pandu/pkg/http/router/controllers"
	"go.uber.org/zap"
)

type streamFix struct {
	Lat      float64  `json:"lat"`
	Lon      float64  `json:"lon"`
	Bearing  *float32 `json:"bearing"`
	Speed    *float32 `json:"speed"`
	Accuracy float32  `json:"accuracy"`
}

type streamObservation struct {
	StreetName     string   `json:"street_name"`
	NextManeuver   string   `json:"next_maneuver"`
	DistanceToNext int      `json:"distance_to_next_m"`
	ETA            string   `json:"eta"`
	MatchedLat     float64  `json:"matched_lat"`
	MatchedLon     float64  `json:"matched_lon"`
	MatchedBearing *float32 `json:"matched_bearing"`
}

/*
locationStream upgrades the connection and runs the positioning loop: each
text frame carries one raw fix, each reply carries the observation for it.
One goroutine per connection; the navigation service serializes engine
access underneath.
*/
func (api *API) locationStream(service controllers.NavigationService) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			api.log.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		go func() {
			defer conn.Close()

			for {
				payload, op, err := wsutil.ReadClientData(conn)
				if err != nil {
					return
				}
				if op != ws.OpText {
					continue
				}

				var fix streamFix
				if err := json.Unmarshal(payload, &fix); err != nil {
					api.log.Debug("bad fix frame", zap.Error(err))
					continue
				}

				bearing := float32(math.NaN())
				if fix.Bearing != nil {
					bearing = *fix.Bearing
				}
				speed := float32(math.NaN())
				if fix.Speed != nil {
					speed = *fix.Speed
				}

				match := service.UpdateLocation(fix.Lat, fix.Lon, bearing, speed, fix.Accuracy)

				observation := streamObservation{
					StreetName:     match.StreetName,
					NextManeuver:   match.NextManeuver,
					DistanceToNext: match.DistanceToNext,
					ETA:            match.EstimatedTimeOfArrival,
					MatchedLat:     match.MatchedLatitude,
					MatchedLon:     match.MatchedLongitude,
				}
				if !math.IsNaN(float64(match.MatchedBearing)) {
					b := match.MatchedBearing
					observation.MatchedBearing = &b
				}

				out, err := json.Marshal(observation)
				if err != nil {
					continue
				}
				if err := wsutil.WriteServerMessage(conn, ws.OpText, out); err != nil {
					return
				}
			}
		}()
	}
}
