package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanQueue(t *testing.T) {
	assert.Equal(t, queuePlan{Name: "events"}, planQueue("", "events"))
	assert.Equal(t, queuePlan{Bind: true, Exchange: "udp", Key: "events"}, planQueue("udp", "events"))
	assert.Equal(t, queuePlan{Bind: true, Exchange: "udp"}, planQueue("udp", ""))
}
