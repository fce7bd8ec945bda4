package orders

import (
	"fmt"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
)

func TestNewOrderNumber(t *testing.T) {
	id := gocql.TimeUUID()
	number := NewOrderNumber(id)

	expected := fmt.Sprintf("ISK-%s-%s", time.Now().Format("20060102"), id.String()[:4])
	assert.Equal(t, expected, number)
	assert.Len(t, number, 17)
}
