package analyzer

import (
	"context"
	"testing"
	"time"

	"bitcoin-watcher-go/internal/binance"
	"bitcoin-watcher-go/internal/database"
	"bitcoin-watcher-go/internal/models"
	"bitcoin-watcher-go/internal/secrets"
	"bitcoin-watcher-go/internal/store"
	"bitcoin-watcher-go/internal/trader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// MockDispatcher records notification sends.
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Send(ctx context.Context, topic, title, body string, data map[string]string) (string, error) {
	args := m.Called(ctx, topic, title, body, data)
	return args.String(0), args.Error(1)
}

// MockClient is a mock implementation of the binance.Client interface.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) TestConnection(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *MockClient) GetServerTime(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClient) GetBalance(ctx context.Context, asset string) (binance.Balance, error) {
	args := m.Called(ctx, asset)
	return args.Get(0).(binance.Balance), args.Error(1)
}

func (m *MockClient) GetCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockClient) GetLotSize(ctx context.Context, symbol string) (binance.LotSize, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(binance.LotSize), args.Error(1)
}

func (m *MockClient) PlaceMarketOrder(ctx context.Context, symbol, side string, quantity float64) (*binance.OrderResponse, error) {
	args := m.Called(ctx, symbol, side, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*binance.OrderResponse), args.Error(1)
}

func (m *MockClient) GetTradeHistory(ctx context.Context, symbol string, limit int) ([]binance.AccountTrade, error) {
	args := m.Called(ctx, symbol, limit)
	return args.Get(0).([]binance.AccountTrade), args.Error(1)
}

type fakeSecrets struct{}

func (fakeSecrets) ExchangeCredentials(environment string) (secrets.ExchangeCredentials, error) {
	return secrets.ExchangeCredentials{APIKey: "key", APISecret: "secret"}, nil
}

func (fakeSecrets) NotificationCredentials() (secrets.NotificationCredentials, error) {
	return secrets.NotificationCredentials{}, nil
}

type testEnv struct {
	analyzer      *Analyzer
	db            *gorm.DB
	prices        *store.PriceStore
	signals       *store.SignalStore
	notifications *store.NotificationStore
	settings      *store.SettingsStore
	failures      *store.FailedTradeStore
	dispatcher    *MockDispatcher
	client        *MockClient
}

func setupTest(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, database.AutoMigrate(db))

	env := &testEnv{
		db:            db,
		prices:        store.NewPriceStore(db),
		signals:       store.NewSignalStore(db),
		notifications: store.NewNotificationStore(db),
		settings:      store.NewSettingsStore(db),
		failures:      store.NewFailedTradeStore(db),
		dispatcher:    new(MockDispatcher),
		client:        new(MockClient),
	}

	factory := func(creds secrets.ExchangeCredentials, sandbox bool) binance.Client {
		return env.client
	}
	tr := trader.New(zap.NewNop(), fakeSecrets{}, store.NewTradeStore(db), env.failures,
		factory, "BTCUSDT", "BTC", "USDT")

	env.analyzer = New(zap.NewNop(), env.prices, env.signals, env.notifications,
		env.settings, env.dispatcher, tr, nil, nil,
		30*time.Minute, "bitcoin-signals", time.Minute)
	return env
}

// seedPrices inserts one sample per minute, oldest first.
func seedPrices(t *testing.T, env *testEnv, values []float64) {
	now := time.Now().UTC()
	for i, v := range values {
		ts := now.Add(-time.Duration(len(values)-i) * time.Minute)
		assert.NoError(t, env.prices.Append(v, ts))
	}
}

// declining yields a downtrend steep enough to classify as BUY with the
// default thresholds (short 7, long 21, 0.5%).
func declining(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = 100 - float64(i)*0.5
	}
	return values
}

func flat(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = 100
	}
	return values
}

func TestRunCycle_HoldProducesNoSideEffects(t *testing.T) {
	env := setupTest(t)
	seedPrices(t, env, flat(25))

	result, err := env.analyzer.RunCycle(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, models.SignalHold, result.Signal.Type)
	assert.False(t, result.Transition)
	assert.False(t, result.NotificationSent)
	assert.False(t, result.TradeExecuted)

	// The HOLD is still persisted for the next cycle's comparison.
	latest, err := env.signals.FindLatest()
	assert.NoError(t, err)
	if assert.NotNil(t, latest) {
		assert.Equal(t, models.SignalHold, latest.Type)
	}
	env.dispatcher.AssertExpectations(t) // never called
}

func TestRunCycle_InsufficientDataHolds(t *testing.T) {
	env := setupTest(t)
	seedPrices(t, env, flat(5)) // fewer than the long MA period

	result, err := env.analyzer.RunCycle(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, models.SignalHold, result.Signal.Type)
	assert.Equal(t, 0.0, result.Signal.Confidence)
	assert.Equal(t, "insufficient data", result.Signal.Reason)
}

func TestRunCycle_TransitionSendsNotification(t *testing.T) {
	env := setupTest(t)
	seedPrices(t, env, declining(25))

	env.dispatcher.On("Send", mock.Anything, "bitcoin-signals",
		"BUY Signal Detected!", mock.Anything, mock.Anything).
		Return("msg-1", nil)

	result, err := env.analyzer.RunCycle(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, models.SignalBuy, result.Signal.Type)
	assert.True(t, result.Transition)
	assert.True(t, result.NotificationSent)
	assert.False(t, result.TradeExecuted) // trading is disabled by default

	// The dispatched notification is recorded with the provider's message id.
	recent, err := env.notifications.Recent(10)
	assert.NoError(t, err)
	if assert.Len(t, recent, 1) {
		assert.Equal(t, result.SignalID, recent[0].SignalID)
		assert.Equal(t, "msg-1", recent[0].MessageID)
		assert.Equal(t, models.SignalBuy, recent[0].SignalType)
	}

	// Trading disabled means no failed-trade record either.
	failed, _ := env.failures.Recent(10)
	assert.Empty(t, failed)
	env.dispatcher.AssertExpectations(t)
}

func TestRunCycle_RepeatedSignalIsNotATransition(t *testing.T) {
	env := setupTest(t)
	seedPrices(t, env, declining(25))

	env.dispatcher.On("Send", mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return("msg-1", nil).Once()

	first, err := env.analyzer.RunCycle(context.Background())
	assert.NoError(t, err)
	assert.True(t, first.Transition)

	// Same market shape on the next cycle: BUY again, but no transition,
	// so no second notification.
	second, err := env.analyzer.RunCycle(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.SignalBuy, second.Signal.Type)
	assert.False(t, second.Transition)
	assert.False(t, second.NotificationSent)

	env.dispatcher.AssertExpectations(t)
}

func TestRunCycle_NotificationFailureDoesNotAbort(t *testing.T) {
	env := setupTest(t)
	seedPrices(t, env, declining(25))

	env.dispatcher.On("Send", mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return("", assert.AnError)

	result, err := env.analyzer.RunCycle(context.Background())

	assert.NoError(t, err)
	assert.True(t, result.Transition)
	assert.False(t, result.NotificationSent)

	// Nothing recorded for a failed dispatch.
	recent, _ := env.notifications.Recent(10)
	assert.Empty(t, recent)
}

func TestRunCycle_NotificationsDisabled(t *testing.T) {
	env := setupTest(t)
	seedPrices(t, env, declining(25))

	disabled := false
	assert.NoError(t, env.settings.Update(models.SettingsOverride{NotificationsEnabled: &disabled}))

	result, err := env.analyzer.RunCycle(context.Background())

	assert.NoError(t, err)
	assert.True(t, result.Transition)
	assert.False(t, result.NotificationSent)
	env.dispatcher.AssertExpectations(t) // never called
}

func TestRunCycle_TransitionTriggersTrade(t *testing.T) {
	env := setupTest(t)
	seedPrices(t, env, declining(25))

	enabled := true
	assert.NoError(t, env.settings.Update(models.SettingsOverride{TradingEnabled: &enabled}))

	env.dispatcher.On("Send", mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return("msg-1", nil)

	env.client.On("TestConnection", mock.Anything).Return(true)
	env.client.On("GetBalance", mock.Anything, "USDT").
		Return(binance.Balance{Asset: "USDT", Free: 1000}, nil)
	env.client.On("GetCurrentPrice", mock.Anything, "BTCUSDT").Return(88.0, nil)
	env.client.On("GetLotSize", mock.Anything, "BTCUSDT").
		Return(binance.LotSize{MinQty: "0.001", MaxQty: "9000", StepSize: "0.001"}, nil)
	env.client.On("PlaceMarketOrder", mock.Anything, "BTCUSDT", binance.OrderSideBuy, mock.Anything).
		Return(&binance.OrderResponse{
			OrderID:     900,
			ExecutedQty: "0.568",
			Status:      "FILLED",
			Fills:       []binance.Fill{{Price: "88.00", Qty: "0.568", Commission: "0.0005"}},
		}, nil)

	result, err := env.analyzer.RunCycle(context.Background())

	assert.NoError(t, err)
	assert.True(t, result.Transition)
	assert.True(t, result.TradeExecuted)
	env.client.AssertExpectations(t)
}

func TestRunCycle_TradeFailureIsContained(t *testing.T) {
	env := setupTest(t)
	seedPrices(t, env, declining(25))

	enabled := true
	assert.NoError(t, env.settings.Update(models.SettingsOverride{TradingEnabled: &enabled}))

	env.dispatcher.On("Send", mock.Anything, mock.Anything,
		mock.Anything, mock.Anything, mock.Anything).
		Return("msg-1", nil)
	env.client.On("TestConnection", mock.Anything).Return(false)

	result, err := env.analyzer.RunCycle(context.Background())

	// The cycle completes; the failure lives in the audit trail.
	assert.NoError(t, err)
	assert.True(t, result.Transition)
	assert.False(t, result.TradeExecuted)

	failed, _ := env.failures.Recent(10)
	assert.Len(t, failed, 1)
}
