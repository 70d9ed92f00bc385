package http

import (
	"encoding/json"

	"github.com/citysim/histmap/internal/core/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

// jsonScalar carries raw GeoJSON geometry through GraphQL untouched.
var jsonScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "JSON",
	Description: "Arbitrary JSON value (GeoJSON geometry)",
	Serialize: func(value interface{}) interface{} {
		raw, ok := value.(json.RawMessage)
		if !ok {
			return value
		}
		var v interface{}
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil
		}
		return v
	},
	ParseValue: func(value interface{}) interface{} { return value },
	ParseLiteral: func(valueAST ast.Value) interface{} {
		return valueAST.GetValue()
	},
})

func argID(p graphql.ResolveParams, name string) int64 {
	v, _ := p.Args[name].(int)
	return int64(v)
}

func argFloat(p graphql.ResolveParams, name string) float64 {
	v, _ := p.Args[name].(float64)
	return v
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	cityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "City",
		Fields: graphql.Fields{
			"id":      &graphql.Field{Type: graphql.Int},
			"name":    &graphql.Field{Type: graphql.String},
			"name_ru": &graphql.Field{Type: graphql.String},
		},
	})

	modeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mode",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.Int},
			"name": &graphql.Field{Type: graphql.String},
		},
	})

	simulationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Simulation",
		Fields: graphql.Fields{
			"id":        &graphql.Field{Type: graphql.Int},
			"year":      &graphql.Field{Type: graphql.Int},
			"city_id":   &graphql.Field{Type: graphql.Int},
			"mode_id":   &graphql.Field{Type: graphql.Int},
			"city_name": &graphql.Field{Type: graphql.String},
			"mode_name": &graphql.Field{Type: graphql.String},
			"center_point": &graphql.Field{
				Type:        graphql.NewList(graphql.Float),
				Description: "[lon, lat] of the simulation center, if known",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					sim, ok := p.Source.(domain.Simulation)
					if !ok {
						if ptr, isPtr := p.Source.(*domain.Simulation); isPtr && ptr != nil {
							sim, ok = *ptr, true
						}
					}
					if !ok || sim.CenterPoint == nil {
						return nil, nil
					}
					return []float64{sim.CenterPoint.Lon, sim.CenterPoint.Lat}, nil
				},
			},
		},
	})

	timelineType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CityTimeline",
		Fields: graphql.Fields{
			"city": &graphql.Field{Type: cityType},
			"timeline": &graphql.Field{Type: graphql.NewList(graphql.NewObject(graphql.ObjectConfig{
				Name: "TimelineEntry",
				Fields: graphql.Fields{
					"year":          &graphql.Field{Type: graphql.Int},
					"simulation_id": &graphql.Field{Type: graphql.Int},
				},
			}))},
		},
	})

	propertiesType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FeatureProperties",
		Fields: graphql.Fields{
			"id":                 &graphql.Field{Type: graphql.Int},
			"name":               &graphql.Field{Type: graphql.String},
			"role":               &graphql.Field{Type: graphql.String},
			"description":        &graphql.Field{Type: graphql.String},
			"distanceFromCenter": &graphql.Field{Type: graphql.Float},
			"distance":           &graphql.Field{Type: graphql.Float},
		},
	})

	featureType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Feature",
		Fields: graphql.Fields{
			"type":       &graphql.Field{Type: graphql.String},
			"geometry":   &graphql.Field{Type: jsonScalar},
			"properties": &graphql.Field{Type: propertiesType},
		},
	})

	metadataType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CollectionMetadata",
		Fields: graphql.Fields{
			"simulation_id": &graphql.Field{Type: graphql.Int},
			"year":          &graphql.Field{Type: graphql.Int},
			"city":          &graphql.Field{Type: graphql.String},
			"mode":          &graphql.Field{Type: graphql.String},
			"count":         &graphql.Field{Type: graphql.Int},
			"bbox": &graphql.Field{
				Type: graphql.NewList(graphql.Float),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					meta, ok := p.Source.(*domain.CollectionMetadata)
					if !ok || meta.BBox == nil {
						return nil, nil
					}
					return meta.BBox.Values(), nil
				},
			},
		},
	})

	collectionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "FeatureCollection",
		Fields: graphql.Fields{
			"type":     &graphql.Field{Type: graphql.String},
			"features": &graphql.Field{Type: graphql.NewList(featureType)},
			"metadata": &graphql.Field{Type: metadataType},
		},
	})

	idArg := graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"cities": &graphql.Field{
				Type:        graphql.NewList(cityType),
				Description: "List all cities",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Cities.List(p.Context)
				},
			},
			"city": &graphql.Field{
				Type: cityType,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Cities.Get(p.Context, argID(p, "id"))
				},
			},
			"timeline": &graphql.Field{
				Type:        timelineType,
				Description: "One simulation per year for a city",
				Args: graphql.FieldConfigArgument{
					"city_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Simulations.Timeline(p.Context, argID(p, "city_id"))
				},
			},
			"modes": &graphql.Field{
				Type: graphql.NewList(modeType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Simulations.Modes(p.Context)
				},
			},
			"simulations": &graphql.Field{
				Type: graphql.NewList(simulationType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Simulations.List(p.Context)
				},
			},
			"simulation": &graphql.Field{
				Type: simulationType,
				Args: idArg,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Simulations.Get(p.Context, argID(p, "id"))
				},
			},
			"geoObjects": &graphql.Field{
				Type:        collectionType,
				Description: "Objects of a simulation, optionally inside bbox [minx, miny, maxx, maxy]",
				Args: graphql.FieldConfigArgument{
					"simulation_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"bbox":          &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.Float))},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var bbox *domain.BoundingBox
					if raw, ok := p.Args["bbox"].([]interface{}); ok {
						if len(raw) != 4 {
							return nil, domain.ErrInvalidBoundingBox
						}
						vals := make([]float64, 4)
						for i, v := range raw {
							vals[i], _ = v.(float64)
						}
						bbox = &domain.BoundingBox{MinX: vals[0], MinY: vals[1], MaxX: vals[2], MaxY: vals[3]}
					}
					return deps.GeoObjects.ForSimulation(p.Context, argID(p, "simulation_id"), bbox)
				},
			},
			"nearby": &graphql.Field{
				Type:        collectionType,
				Description: "Objects of a simulation nearest to a point",
				Args: graphql.FieldConfigArgument{
					"simulation_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"lon":           &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lat":           &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius":        &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 5.0},
					"limit":         &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					point := domain.GeoPoint{Lon: argFloat(p, "lon"), Lat: argFloat(p, "lat")}
					limit, _ := p.Args["limit"].(int)
					return deps.GeoObjects.Nearby(p.Context, argID(p, "simulation_id"), point, argFloat(p, "radius"), limit)
				},
			},
			"geoObject": &graphql.Field{
				Type: featureType,
				Args: graphql.FieldConfigArgument{
					"id":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"srid": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 4326},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					srid, _ := p.Args["srid"].(int)
					return deps.GeoObjects.Get(p.Context, argID(p, "id"), srid)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
