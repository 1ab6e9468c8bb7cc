package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	svc := &PaymentService{keySecret: "test_secret"}

	sig := SignPayment("test_secret", "order_abc", "pay_xyz")
	assert.True(t, svc.VerifySignature("order_abc", "pay_xyz", sig))
}

func TestVerifySignature_Rejects(t *testing.T) {
	svc := &PaymentService{keySecret: "test_secret"}
	sig := SignPayment("test_secret", "order_abc", "pay_xyz")

	assert.False(t, svc.VerifySignature("order_abc", "pay_xyz", "deadbeef"), "forged signature")
	assert.False(t, svc.VerifySignature("order_other", "pay_xyz", sig), "wrong order")
	assert.False(t, svc.VerifySignature("order_abc", "pay_other", sig), "wrong payment")
	assert.False(t, svc.VerifySignature("order_abc", "pay_xyz", ""), "empty signature")

	wrongKey := SignPayment("other_secret", "order_abc", "pay_xyz")
	assert.False(t, svc.VerifySignature("order_abc", "pay_xyz", wrongKey), "wrong key")
}

func TestVerifySignature_UnconfiguredSecret(t *testing.T) {
	svc := &PaymentService{}
	sig := SignPayment("", "order_abc", "pay_xyz")
	assert.False(t, svc.VerifySignature("order_abc", "pay_xyz", sig))
}

func TestSignPayment_Deterministic(t *testing.T) {
	a := SignPayment("secret", "order_1", "pay_1")
	b := SignPayment("secret", "order_1", "pay_1")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64) // hex SHA-256
}

func TestCreateOrder_Unconfigured(t *testing.T) {
	svc := &PaymentService{}
	_, err := svc.CreateOrder(1, 500)
	assert.ErrorIs(t, err, ErrPaymentsUnavailable)
}
