package queries

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
)

// MissionQuery defines the structure of a mission search request
type MissionQuery struct {
	Index      string
	QueryType  string
	Filters    map[string]interface{}
	MissionID  string
	Category   string
	Pagination struct {
		From int
		Size int
	}
}

// BuildQuery builds an Elasticsearch search request based on query type and filters
func BuildQuery(esClient *elasticsearch.Client, mq MissionQuery) (*esapi.SearchRequest, error) {
	if mq.Index == "" {
		return nil, ErrMissingIndex
	}

	var queryBody map[string]interface{}

	switch mq.QueryType {
	case "mission_search":
		queryBody = buildMissionSearchQuery(mq)
	case "similar_missions":
		queryBody = buildSimilarMissionsQuery(mq)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, mq.QueryType)
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index:  []string{mq.Index},
		Body:   strings.NewReader(string(body)),
		From:   &mq.Pagination.From,
		Size:   &mq.Pagination.Size,
		Pretty: true,
	}

	return &req, nil
}

// buildMissionSearchQuery builds the main mission search query dynamically
func buildMissionSearchQuery(mq MissionQuery) map[string]interface{} {
	boolQuery := make(map[string]interface{})
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	// Keyword search
	if keywords, ok := mq.Filters["keywords"].(string); ok && keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"title^3", "description^2", "category", "required_skills"},
				"type":   "best_fields",
			},
		})
	}

	// Category filter
	if category, ok := mq.Filters["category"].(string); ok && category != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"category": category},
		})
	} else if mq.Category != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"category": mq.Category},
		})
	}

	// Required skills filter: any listed skill qualifies
	if skills, ok := mq.Filters["requiredSkills"].([]interface{}); ok && len(skills) > 0 {
		terms := make([]string, 0, len(skills))
		for _, s := range skills {
			if str, ok := s.(string); ok {
				terms = append(terms, str)
			}
		}
		if len(terms) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"terms": map[string]interface{}{"required_skills": terms},
			})
		}
	}

	// Schedule days filter
	if days, ok := mq.Filters["scheduleDays"].([]interface{}); ok && len(days) > 0 {
		terms := make([]string, 0, len(days))
		for _, d := range days {
			if s, ok := d.(string); ok {
				terms = append(terms, s)
			}
		}
		if len(terms) > 0 {
			filterClauses = append(filterClauses, map[string]interface{}{
				"terms": map[string]interface{}{"schedule_days": terms},
			})
		}
	}

	// Time slot filter
	if slot, ok := mq.Filters["scheduleTime"].(string); ok && slot != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"schedule_time": slot},
		})
	}

	// Status filter, defaulting to active missions
	status := "active"
	if s, ok := mq.Filters["status"].(string); ok && s != "" {
		status = s
	}
	filterClauses = append(filterClauses, map[string]interface{}{
		"term": map[string]interface{}{"status": status},
	})

	// Default match_all if no keyword
	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery["must"] = mustClauses
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}

	// Sorting logic
	if sortBy, ok := mq.Filters["sortBy"].(string); ok {
		switch sortBy {
		case "title":
			query["sort"] = []map[string]interface{}{{"title.keyword": "asc"}}
		case "created_at":
			query["sort"] = []map[string]interface{}{{"created_at": "desc"}}
		}
	}

	return query
}

// buildSimilarMissionsQuery builds a "missions like this one" query
func buildSimilarMissionsQuery(mq MissionQuery) map[string]interface{} {
	if mq.MissionID == "" {
		return map[string]interface{}{
			"query": map[string]interface{}{
				"match_none": map[string]interface{}{},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"more_like_this": map[string]interface{}{
				"fields": []string{"title", "description", "category", "required_skills"},
				"like": []map[string]interface{}{
					{"_index": mq.Index, "_id": mq.MissionID},
				},
				"min_term_freq":   1,
				"max_query_terms": 12,
				"min_doc_freq":    1,
				"min_word_length": 3,
			},
		},
	}
}
