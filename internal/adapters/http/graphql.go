package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	coordinateType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Coordinate",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	propertyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Property",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"title":        &graphql.Field{Type: graphql.String},
			"address":      &graphql.Field{Type: graphql.String},
			"postcode":     &graphql.Field{Type: graphql.String},
			"monthly_rent": &graphql.Field{Type: graphql.Int},
			"currency":     &graphql.Field{Type: graphql.String},
			"bedrooms":     &graphql.Field{Type: graphql.Int},
			"bathrooms":    &graphql.Field{Type: graphql.Int},
			"furnished":    &graphql.Field{Type: graphql.Boolean},
			"location":     &graphql.Field{Type: coordinateType},
			"lister":       &graphql.Field{Type: graphql.String},
			"distance":     &graphql.Field{Type: graphql.Float},
		},
	})

	destinationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Destination",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"user_id":      &graphql.Field{Type: graphql.String},
			"display_name": &graphql.Field{Type: graphql.String},
			"postcode":     &graphql.Field{Type: graphql.String},
			"location":     &graphql.Field{Type: coordinateType},
			"position":     &graphql.Field{Type: graphql.Int},
		},
	})

	searchRecordType := graphql.NewObject(graphql.ObjectConfig{
		Name: "SearchRecord",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"user_id":  &graphql.Field{Type: graphql.String},
			"query":    &graphql.Field{Type: graphql.String},
			"outcome":  &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: coordinateType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"properties": &graphql.Field{
				Type:        graphql.NewList(propertyType),
				Description: "List rental listings, newest first",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					offset := p.Args["offset"].(int)
					limit := p.Args["limit"].(int)
					properties, _, err := deps.Properties.List(p.Context, offset, limit)
					return properties, err
				},
			},
			"property": &graphql.Field{
				Type:        propertyType,
				Description: "Get a listing by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Properties.GetByID(p.Context, id)
				},
			},
			"propertiesNearby": &graphql.Field{
				Type:        graphql.NewList(propertyType),
				Description: "Find listings near a location",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 1000.0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius"].(float64)
					limit := p.Args["limit"].(int)
					return deps.Properties.FindNearby(p.Context, lat, lon, radius, limit)
				},
			},
			"searchProperties": &graphql.Field{
				Type:        graphql.NewList(propertyType),
				Description: "Search listings by title or address (fuzzy matching)",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := p.Args["query"].(string)
					limit := p.Args["limit"].(int)
					return deps.Properties.Search(p.Context, q, limit)
				},
			},
			"destinations": &graphql.Field{
				Type:        graphql.NewList(destinationType),
				Description: "A user's saved destinations in saved order",
				Args: graphql.FieldConfigArgument{
					"user": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					user := p.Args["user"].(string)
					return deps.Destinations.ListByUser(p.Context, user)
				},
			},
			"geocode": &graphql.Field{
				Type:        coordinateType,
				Description: "Resolve free text into a coordinate",
				Args: graphql.FieldConfigArgument{
					"text": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					text := p.Args["text"].(string)
					outcome := deps.Resolver.Resolve(p.Context, text)
					if outcome.Err != nil {
						if errors.Is(outcome.Err, domain.ErrNoMatch) {
							return nil, nil
						}
						return nil, outcome.Err
					}
					return outcome.Coordinate, nil
				},
			},
			"recentSearches": &graphql.Field{
				Type:        graphql.NewList(searchRecordType),
				Description: "A user's latest settled searches, newest first",
				Args: graphql.FieldConfigArgument{
					"user":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					user := p.Args["user"].(string)
					limit := p.Args["limit"].(int)
					return deps.History.Recent(p.Context, user, limit)
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
		// This would be a programming error in the schema definition
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
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
