package repository

import (
	"fmt"
	"regexp"
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"apprehension-service/internal/model"
	"apprehension-service/internal/query"
)

// compileMatch interprets a typed match expression as a Mongo filter
// document. Conditions on the same field merge into one field expression, so
// a NotNull can ride along with a DateRange.
func compileMatch(m query.Match) bson.M {
	out := bson.M{}

	fieldExpr := func(field string) bson.M {
		if existing, ok := out[field].(bson.M); ok {
			return existing
		}
		expr := bson.M{}
		out[field] = expr
		return expr
	}

	for _, cond := range m {
		switch c := cond.(type) {
		case query.DateRange:
			expr := fieldExpr(c.Field)
			if c.From != nil {
				expr["$gte"] = *c.From
			}
			if c.To != nil {
				expr["$lte"] = *c.To
			}
		case query.Contains:
			expr := fieldExpr(c.Field)
			expr["$regex"] = regexp.QuoteMeta(c.Value)
			expr["$options"] = "i"
		case query.ContainsAny:
			or := make(bson.A, 0, len(c.Fields))
			for _, field := range c.Fields {
				or = append(or, bson.M{field: bson.M{
					"$regex":   regexp.QuoteMeta(c.Value),
					"$options": "i",
				}})
			}
			out["$or"] = or
		case query.NotNull:
			expr := fieldExpr(c.Field)
			expr["$ne"] = nil
		case query.Pattern:
			expr := fieldExpr(c.Field)
			expr["$regex"] = c.Expr
		default:
			panic(fmt.Sprintf("unsupported condition %T", cond))
		}
	}

	return out
}

func dateBucketFormat(g model.Granularity) string {
	switch g {
	case model.GranularityWeek:
		return "%Y-W%V"
	case model.GranularityMonth:
		return "%Y-%m"
	default:
		return "%Y-%m-%d"
	}
}

func compileGroupKey(key query.GroupKey) any {
	switch k := key.(type) {
	case query.ByField:
		return "$" + k.Field
	case query.ByDateBucket:
		return bson.M{"$dateToString": bson.M{
			"format": dateBucketFormat(k.Granularity),
			"date":   "$" + k.Field,
		}}
	case query.ByHourOfTime:
		split := bson.M{"$split": bson.A{"$" + k.Field, ":"}}
		return bson.M{"$toInt": bson.M{"$arrayElemAt": bson.A{split, 0}}}
	case query.ByDayOfWeek:
		return bson.M{"$dayOfWeek": "$" + k.Field}
	default:
		panic(fmt.Sprintf("unsupported group key %T", key))
	}
}

// compileStages interprets typed stage descriptors as an aggregation
// pipeline. Facet branches compile in lexical order to keep output stable.
func compileStages(stages []query.Stage) mongo.Pipeline {
	pipeline := make(mongo.Pipeline, 0, len(stages))

	for _, stage := range stages {
		switch s := stage.(type) {
		case query.MatchStage:
			pipeline = append(pipeline, bson.D{{Key: "$match", Value: compileMatch(s.Match)}})
		case query.GroupCount:
			pipeline = append(pipeline, bson.D{{Key: "$group", Value: bson.M{
				"_id":   compileGroupKey(s.Key),
				"count": bson.M{"$sum": 1},
			}}})
		case query.Sort:
			field := "_id"
			if s.By == query.SortByCount {
				field = "count"
			}
			order := 1
			if s.Desc {
				order = -1
			}
			pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.D{{Key: field, Value: order}}}})
		case query.Limit:
			pipeline = append(pipeline, bson.D{{Key: "$limit", Value: s.N}})
		case query.Count:
			pipeline = append(pipeline, bson.D{{Key: "$count", Value: "count"}})
		case query.Facet:
			names := make([]string, 0, len(s.Branches))
			for name := range s.Branches {
				names = append(names, name)
			}
			sort.Strings(names)

			facet := bson.D{}
			for _, name := range names {
				facet = append(facet, bson.E{Key: name, Value: compileStages(s.Branches[name])})
			}
			pipeline = append(pipeline, bson.D{{Key: "$facet", Value: facet}})
		default:
			panic(fmt.Sprintf("unsupported stage %T", stage))
		}
	}

	return pipeline
}
