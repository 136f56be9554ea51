package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/order"
)

type fakeGateway struct {
	configured bool
	validSig   bool
	created    []CreateOrderRequest
	createErr  error
}

func (g *fakeGateway) Configured() bool { return g.configured }
func (g *fakeGateway) KeyID() string    { return "rzp_test_key" }

func (g *fakeGateway) CreateOrder(ctx context.Context, req CreateOrderRequest) (*RazorpayOrder, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created = append(g.created, req)
	return &RazorpayOrder{ID: "order_rzp_1", Amount: req.Amount, Currency: req.Currency}, nil
}

func (g *fakeGateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return g.validSig
}

type fakeOrders struct {
	orders map[uint]*order.Order
	paid   []uint
	payErr error
	onPaid func(o *order.Order)
}

func (f *fakeOrders) GetUserOrder(ctx context.Context, userID, id uint) (*order.Order, error) {
	o, ok := f.orders[id]
	if !ok || o.UserID == nil || *o.UserID != userID {
		return nil, order.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (f *fakeOrders) AttachGatewayOrder(ctx context.Context, id uint, gatewayOrderID string) (*order.Order, error) {
	o := f.orders[id]
	o.GatewayOrderID = gatewayOrderID
	return o, nil
}

func (f *fakeOrders) MarkPaidOnline(ctx context.Context, id uint, gatewayOrderID, paymentID string, actor *uint) (*order.Order, error) {
	if f.payErr != nil {
		if f.onPaid != nil {
			f.onPaid(f.orders[id])
		}
		return nil, f.payErr
	}
	f.paid = append(f.paid, id)
	o := f.orders[id]
	o.GatewayPaymentID = paymentID
	o.PaymentStatus = order.PaymentStatusPaid
	o.Status = order.OrderStatusConfirmed
	return o, nil
}

func newPaymentService(gateway *fakeGateway, orders *fakeOrders) *Service {
	logger, _ := test.NewNullLogger()
	return NewService(gateway, orders, logger)
}

func razorpayOrder(id, userID uint) *order.Order {
	return &order.Order{
		ID:            id,
		UserID:        &userID,
		OrderNumber:   "ORD-20261015-00001",
		Status:        order.OrderStatusPending,
		PaymentStatus: order.PaymentStatusPending,
		PaymentMethod: "razorpay",
		TotalAmount:   decimal.RequireFromString("338.50"),
		Currency:      "INR",
	}
}

func TestInitiate(t *testing.T) {
	gateway := &fakeGateway{configured: true}
	orders := &fakeOrders{orders: map[uint]*order.Order{1: razorpayOrder(1, 5)}}
	svc := newPaymentService(gateway, orders)

	started, err := svc.Initiate(context.Background(), 5, 1)
	require.NoError(t, err)

	assert.Equal(t, "order_rzp_1", started.GatewayOrderID)
	assert.Equal(t, "rzp_test_key", started.KeyID)
	assert.Equal(t, int64(33850), started.Amount)
	assert.Equal(t, "INR", started.Currency)
	assert.Equal(t, "ORD-20261015-00001", started.OrderNumber)

	require.Len(t, gateway.created, 1)
	assert.Equal(t, "ORD-20261015-00001", gateway.created[0].Notes["order_number"])
	assert.Equal(t, "ORD-20261015-00001", gateway.created[0].Receipt)
	assert.Equal(t, "order_rzp_1", orders.orders[1].GatewayOrderID)
}

func TestInitiateRejections(t *testing.T) {
	cod := razorpayOrder(2, 5)
	cod.PaymentMethod = "cod"
	confirmed := razorpayOrder(3, 5)
	confirmed.Status = order.OrderStatusConfirmed
	failedBefore := razorpayOrder(4, 5)
	failedBefore.PaymentStatus = order.PaymentStatusFailed

	orders := &fakeOrders{orders: map[uint]*order.Order{
		1: razorpayOrder(1, 5), 2: cod, 3: confirmed, 4: failedBefore,
	}}

	_, err := newPaymentService(&fakeGateway{}, orders).Initiate(context.Background(), 5, 1)
	assert.ErrorIs(t, err, ErrGatewayNotConfigured)

	svc := newPaymentService(&fakeGateway{configured: true}, orders)

	_, err = svc.Initiate(context.Background(), 6, 1)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)

	_, err = svc.Initiate(context.Background(), 5, 2)
	assert.ErrorIs(t, err, ErrNotPayable)
	assert.EqualError(t, err, "Order is paid by cod")

	_, err = svc.Initiate(context.Background(), 5, 3)
	assert.ErrorIs(t, err, ErrNotPayable)

	_, err = svc.Initiate(context.Background(), 5, 4)
	assert.NoError(t, err, "a failed payment can be retried")
}

func TestInitiateGatewayError(t *testing.T) {
	gateway := &fakeGateway{configured: true, createErr: errors.New("API call failed with status 500")}
	orders := &fakeOrders{orders: map[uint]*order.Order{1: razorpayOrder(1, 5)}}

	_, err := newPaymentService(gateway, orders).Initiate(context.Background(), 5, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create Razorpay order")
}

func attached(id, userID uint, gatewayOrderID string) *order.Order {
	o := razorpayOrder(id, userID)
	o.GatewayOrderID = gatewayOrderID
	return o
}

func TestVerify(t *testing.T) {
	req := &VerifyRequest{RazorpayOrderID: "order_rzp_1", RazorpayPaymentID: "pay_1", RazorpaySignature: "sig"}

	t.Run("bad signature", func(t *testing.T) {
		orders := &fakeOrders{orders: map[uint]*order.Order{1: attached(1, 5, "order_rzp_1")}}
		_, err := newPaymentService(&fakeGateway{configured: true}, orders).Verify(context.Background(), 5, 1, req)
		assert.ErrorIs(t, err, ErrInvalidSignature)
		assert.Empty(t, orders.paid)
	})

	t.Run("marks paid", func(t *testing.T) {
		orders := &fakeOrders{orders: map[uint]*order.Order{1: attached(1, 5, "order_rzp_1")}}
		o, err := newPaymentService(&fakeGateway{configured: true, validSig: true}, orders).Verify(context.Background(), 5, 1, req)
		require.NoError(t, err)
		assert.Equal(t, order.PaymentStatusPaid, o.PaymentStatus)
		assert.Equal(t, "pay_1", o.GatewayPaymentID)
		assert.Equal(t, []uint{1}, orders.paid)
	})

	t.Run("already paid by webhook", func(t *testing.T) {
		paid := attached(1, 5, "order_rzp_1")
		paid.PaymentStatus = order.PaymentStatusPaid
		orders := &fakeOrders{orders: map[uint]*order.Order{1: paid}}
		o, err := newPaymentService(&fakeGateway{configured: true, validSig: true}, orders).Verify(context.Background(), 5, 1, req)
		require.NoError(t, err)
		assert.Equal(t, order.PaymentStatusPaid, o.PaymentStatus)
		assert.Empty(t, orders.paid)
	})

	t.Run("loses race with webhook", func(t *testing.T) {
		orders := &fakeOrders{
			orders: map[uint]*order.Order{1: attached(1, 5, "order_rzp_1")},
			payErr: order.ErrInvalidPaymentState,
			onPaid: func(o *order.Order) { o.PaymentStatus = order.PaymentStatusPaid },
		}
		o, err := newPaymentService(&fakeGateway{configured: true, validSig: true}, orders).Verify(context.Background(), 5, 1, req)
		require.NoError(t, err)
		assert.Equal(t, order.PaymentStatusPaid, o.PaymentStatus)
	})

	t.Run("signature for another gateway order", func(t *testing.T) {
		orders := &fakeOrders{orders: map[uint]*order.Order{
			1: attached(1, 5, "order_rzp_1"),
			2: attached(2, 5, "order_rzp_2"),
		}}
		svc := newPaymentService(&fakeGateway{configured: true, validSig: true}, orders)

		cheap := &VerifyRequest{RazorpayOrderID: "order_rzp_2", RazorpayPaymentID: "pay_2", RazorpaySignature: "valid-for-order-2"}
		_, err := svc.Verify(context.Background(), 5, 1, cheap)
		assert.ErrorIs(t, err, order.ErrGatewayMismatch)
		assert.Empty(t, orders.paid)
		assert.Equal(t, order.PaymentStatusPending, orders.orders[1].PaymentStatus)
	})

	t.Run("never initiated", func(t *testing.T) {
		orders := &fakeOrders{orders: map[uint]*order.Order{1: razorpayOrder(1, 5)}}
		_, err := newPaymentService(&fakeGateway{configured: true, validSig: true}, orders).Verify(context.Background(), 5, 1, req)
		assert.ErrorIs(t, err, order.ErrGatewayMismatch)
		assert.Empty(t, orders.paid)
	})

	t.Run("other order", func(t *testing.T) {
		orders := &fakeOrders{orders: map[uint]*order.Order{1: attached(1, 5, "order_rzp_1")}}
		_, err := newPaymentService(&fakeGateway{configured: true, validSig: true}, orders).Verify(context.Background(), 6, 1, req)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}
