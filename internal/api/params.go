package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
)

// paramUUID parses a path parameter as a UUID, writing a 400 on failure
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondBadRequest(c, name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// pageFromQuery reads the page and per_page query parameters
func pageFromQuery(c *gin.Context) data.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	return data.Page{Number: page, PerPage: perPage}.Normalize()
}

// sortFromQuery reads sort_field and sort_direction, ignoring fields not
// in the allow-list
func sortFromQuery(c *gin.Context, allowed func(string) bool) data.Sort {
	field := c.Query("sort_field")
	if field != "" && !allowed(field) {
		field = ""
	}
	return data.Sort{
		Field:     field,
		Direction: c.Query("sort_direction"),
	}
}

// boolQuery reads an optional boolean query parameter
func boolQuery(c *gin.Context, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}

// uuidQuery reads an optional UUID query parameter, ignoring bad values
func uuidQuery(c *gin.Context, name string) *uuid.UUID {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
