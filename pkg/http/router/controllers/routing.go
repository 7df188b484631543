package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/osmrouter/pkg/http/router/routerhelper"
	"github.com/lintang-b-s/osmrouter/pkg/util"
	"go.uber.org/zap"
)

const maxRequestBodyBytes = 1 << 16

type routingAPI struct {
	routingService RoutingService
	validator      *requestValidator
	log            *zap.Logger
}

func New(routingService RoutingService, log *zap.Logger) *routingAPI {
	return &routingAPI{
		routingService: routingService,
		validator:      newRequestValidator(),
		log:            log,
	}
}

func (api *routingAPI) Routes(group *helper.RouteGroup) {
	group.GET("/computeRoutes", api.shortestPath)
	group.POST("/computeRoutes", api.shortestPathJSON)
	group.GET("/nearestNode", api.nearestNode)
	group.GET("/graph", api.graphSummary)
}

func parseFloatParam(query map[string][]string, name string) (*float64, error) {
	values, ok := query[name]
	if !ok || len(values) == 0 || values[0] == "" {
		return nil, fmt.Errorf("%s is required and must be a valid float", name)
	}
	v, err := util.StringToFloat64(values[0])
	if err != nil {
		return nil, fmt.Errorf("%s is required and must be a valid float", name)
	}
	return &v, nil
}

// shortestPath
//
//	@Summary		shortest path between two coordinates
//	@Tags			routing
//	@Produce		json
//	@Param			origin_lat		query		number	true	"origin latitude"
//	@Param			origin_lon		query		number	true	"origin longitude"
//	@Param			destination_lat	query		number	true	"destination latitude"
//	@Param			destination_lon	query		number	true	"destination longitude"
//	@Param			algorithm		query		string	false	"dijkstra | astar"
//	@Param			metric			query		string	false	"time | distance"
//	@Success		200				{object}	shortestPathResponse
//	@Failure		400,404,504		{object}	errorResponse
//	@Router			/computeRoutes [get]
func (api *routingAPI) shortestPath(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request shortestPathRequest
		err     error
	)

	query := r.URL.Query()

	if request.OriginLat, err = parseFloatParam(query, "origin_lat"); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if request.OriginLon, err = parseFloatParam(query, "origin_lon"); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if request.DestinationLat, err = parseFloatParam(query, "destination_lat"); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if request.DestinationLon, err = parseFloatParam(query, "destination_lon"); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	request.Algorithm = query.Get("algorithm")
	request.Metric = query.Get("metric")

	api.computeRoute(w, r, request)
}

// shortestPathJSON
//
//	@Summary	shortest path between two coordinates, JSON body
//	@Tags		routing
//	@Accept		json
//	@Produce	json
//	@Param		body		body		shortestPathRequest	true	"route query"
//	@Success	200			{object}	shortestPathResponse
//	@Failure	400,404,504	{object}	errorResponse
//	@Router		/computeRoutes [post]
func (api *routingAPI) shortestPathJSON(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request shortestPathRequest

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		api.BadRequestResponse(w, r, fmt.Errorf("invalid request body: %w", err))
		return
	}

	api.computeRoute(w, r, request)
}

func (api *routingAPI) computeRoute(w http.ResponseWriter, r *http.Request, request shortestPathRequest) {
	if err := api.validator.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	res, err := api.routingService.ShortestPath(r.Context(), request.toQuery())
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewShortestPathResponse(res)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

// nearestNode
//
//	@Summary	nearest graph node within the snap radius
//	@Tags		routing
//	@Produce	json
//	@Param		lat	query		number	true	"latitude"
//	@Param		lon	query		number	true	"longitude"
//	@Success	200	{object}	snappedNode
//	@Failure	400,404	{object}	errorResponse
//	@Router		/nearestNode [get]
func (api *routingAPI) nearestNode(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request nearestNodeRequest
		err     error
	)
	query := r.URL.Query()
	if request.Lat, err = parseFloatParam(query, "lat"); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if request.Lon, err = parseFloatParam(query, "lon"); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := api.validator.Struct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	node, err := api.routingService.NearestNode(*request.Lat, *request.Lon)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": newSnappedNode(node)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// graphSummary
//
//	@Summary	loaded graph summary
//	@Tags		graph
//	@Produce	json
//	@Success	200	{object}	graphSummaryResponse
//	@Router		/graph [get]
func (api *routingAPI) graphSummary(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	summary := api.routingService.GraphSummary()
	if summary.BoundingBox == nil {
		api.ServerErrorResponse(w, r, errors.New("graph has no bounding box"))
		return
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewGraphSummaryResponse(summary)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}
