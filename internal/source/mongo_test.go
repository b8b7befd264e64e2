package source

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/huangsam/stockcast/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesPipeline(t *testing.T) {
	w := testWindow()
	pipeline := salesPipeline(w, schema.DefaultSaleStatuses)
	require.Len(t, pipeline, 3)

	match, ok := pipeline[0][0].Value.(bson.M)
	require.True(t, ok)
	assert.Equal(t, "$match", pipeline[0][0].Key)
	assert.Equal(t, bson.M{"$gte": w.Start, "$lt": w.End}, match["createdAt"])
	assert.Equal(t, bson.M{"$in": []string{"successful", "completed"}}, match["status"])

	assert.Equal(t, "$unwind", pipeline[1][0].Key)
	assert.Equal(t, "$project", pipeline[2][0].Key)
}

func TestInventoryPipeline(t *testing.T) {
	pipeline := inventoryPipeline()
	require.Len(t, pipeline, 1)
	project, ok := pipeline[0][0].Value.(bson.M)
	require.True(t, ok)
	assert.Equal(t, bson.M{"$toString": "$_id"}, project["_id"])
}
