package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffersKey(t *testing.T) {
	assert.Equal(t, "offers:v0:user:7", offersKey(0, 7))
	assert.Equal(t, "offers:v3:user:7", offersKey(3, 7))
}

func TestOffersKey_VersionBumpOrphansEveryUser(t *testing.T) {
	before := []string{offersKey(4, 1), offersKey(4, 2), offersKey(4, 3)}
	after := []string{offersKey(5, 1), offersKey(5, 2), offersKey(5, 3)}
	for i := range before {
		assert.NotEqual(t, before[i], after[i])
	}
}
