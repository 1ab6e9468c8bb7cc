package routes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"urban-auto-server/models"
)

func TestUserCSVRowMatchesHeader(t *testing.T) {
	user := models.User{
		ID:            7,
		FullName:      "Asha Rao",
		Email:         "asha@example.com",
		Phone:         "9876543210",
		WalletBalance: 450,
		Verified:      true,
		Blocked:       false,
		City:          "Bengaluru",
		CreatedAt:     time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}

	header := UserCSVHeader()
	row := UserCSVRow(&user)
	assert.Equal(t, len(header), len(row))

	assert.Equal(t, "7", row[0])
	assert.Equal(t, "Asha Rao", row[1])
	assert.Equal(t, "asha@example.com", row[2])
	assert.Equal(t, "9876543210", row[3])
	assert.Equal(t, "450", row[4])
	assert.Equal(t, "true", row[5])
	assert.Equal(t, "false", row[6])
	assert.Equal(t, "Bengaluru", row[7])
	assert.Equal(t, "2026-03-14 09:30:00", row[8])
}
