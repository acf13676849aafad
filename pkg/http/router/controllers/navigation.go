package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type navigationAPI struct {
	navigationService NavigationService
	log               *zap.Logger
	validate          *validator.Validate
	trans             ut.Translator
}

func New(navigationService NavigationService, log *zap.Logger) *navigationAPI {
	validate := validator.New()

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	return &navigationAPI{
		navigationService: navigationService,
		log:               log,
		validate:          validate,
		trans:             trans,
	}
}

func (api *navigationAPI) Routes(router *httprouter.Router) {
	router.POST("/api/navigation/location", api.updateLocation)
	router.POST("/api/navigation/destination", api.setDestination)
	router.GET("/api/navigation/routes", api.alternativeRoutes)
	router.POST("/api/navigation/routes/switch", api.switchRoute)
}

func (api *navigationAPI) updateLocation(w http.ResponseWriter, r *http.Request,
	_ httprouter.Params) {

	var request updateLocationRequest
	if !api.decode(w, r, &request) {
		return
	}

	match := api.navigationService.UpdateLocation(
		request.Lat, request.Lon,
		request.bearingOrNaN(), request.speedOrNaN(), request.Accuracy)

	api.writeJSON(w, http.StatusOK, newRouteMatchResponse(match))
}

func (api *navigationAPI) setDestination(w http.ResponseWriter, r *http.Request,
	_ httprouter.Params) {

	var request setDestinationRequest
	if !api.decode(w, r, &request) {
		return
	}

	accepted := api.navigationService.SetDestination(request.Lat, request.Lon)
	api.writeJSON(w, http.StatusOK, setDestinationResponse{Accepted: accepted})
}

func (api *navigationAPI) alternativeRoutes(w http.ResponseWriter, _ *http.Request,
	_ httprouter.Params) {

	routes := api.navigationService.GetAlternativeRoutes()

	response := make([]routeResponse, 0, len(routes))
	for _, route := range routes {
		response = append(response, newRouteResponse(route))
	}

	api.writeJSON(w, http.StatusOK, response)
}

func (api *navigationAPI) switchRoute(w http.ResponseWriter, r *http.Request,
	_ httprouter.Params) {

	var request switchRouteRequest
	if !api.decode(w, r, &request) {
		return
	}

	switched := api.navigationService.SwitchToRoute(request.RouteID)
	status := http.StatusOK
	if !switched {
		status = http.StatusNotFound
	}
	api.writeJSON(w, status, switchRouteResponse{Switched: switched})
}

// decode unmarshals and validates the request body, answering 400 itself
// when either step fails.
func (api *navigationAPI) decode(w http.ResponseWriter, r *http.Request,
	dst interface{}) bool {

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		api.badRequest(w, errors.New("invalid JSON body"))
		return false
	}

	if err := api.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			messages := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				messages = append(messages, fe.Translate(api.trans))
			}
			api.writeJSON(w, http.StatusBadRequest,
				map[string]interface{}{"errors": messages})
			return false
		}
		api.badRequest(w, err)
		return false
	}

	return true
}

func (api *navigationAPI) badRequest(w http.ResponseWriter, err error) {
	api.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func (api *navigationAPI) writeJSON(w http.ResponseWriter, status int,
	payload interface{}) {

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		api.log.Error("write response", zap.Error(err))
	}
}
