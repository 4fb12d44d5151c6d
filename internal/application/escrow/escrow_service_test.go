package escrow

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conmuninw/gameruleTh-Bot/internal/application/sessionstate"
	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/internal/domain/interfaces"
	"github.com/conmuninw/gameruleTh-Bot/internal/infrastructure/promptpay"
	"github.com/conmuninw/gameruleTh-Bot/internal/repositories/transactionrepo"
	"github.com/conmuninw/gameruleTh-Bot/internal/testutil"
	"github.com/conmuninw/gameruleTh-Bot/pkg/clock"
	"github.com/conmuninw/gameruleTh-Bot/pkg/config"
)

const (
	seller = "seller-1"
	buyer  = "buyer-1"
	other  = "buyer-2"
	admin  = "admin-1"
	payee  = "0812345678"
)

var (
	epoch   = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	details = domain.GameDetails{Game: "ArenaBreakout", Level: "L50", Price: 1700}
)

type staticPayee string

func (p staticPayee) EscrowPayee(context.Context) string { return string(p) }

// stalledAdmins never answers a lookup before its context ends.
type stalledAdmins struct{}

func (stalledAdmins) Get(ctx context.Context, _ string) (domain.Admin, error) {
	<-ctx.Done()
	return domain.Admin{}, ctx.Err()
}

func (stalledAdmins) Upsert(context.Context, domain.Admin) error { return nil }

func (stalledAdmins) List(context.Context) ([]domain.Admin, error) { return nil, nil }

type dispute struct {
	UserID        string
	TransactionID string
	Text          string
}

type recordingDisputes struct {
	mu    sync.Mutex
	calls []dispute
}

func (d *recordingDisputes) OpenDispute(_ context.Context, userID, transactionID, text string) (domain.ReportCase, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, dispute{userID, transactionID, text})
	return domain.ReportCase{CaseID: "CASE-1", UserID: userID, TransactionID: transactionID}, nil
}

type fixture struct {
	service   IEscrowService
	repo      transactionrepo.ITransactionRepository
	sessions  *sessionstate.Store
	notifier  *testutil.Notifier
	publisher *testutil.Publisher
	disputes  *recordingDisputes
	clock     *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithRepo(t, transactionrepo.NewMemory())
}

func newFixtureWithRepo(t *testing.T, repo transactionrepo.ITransactionRepository) *fixture {
	t.Helper()
	return buildFixture(t, repo, staticPayee(payee), time.Second)
}

func buildFixture(t *testing.T, repo transactionrepo.ITransactionRepository, payees interfaces.PayeeResolver, storeTimeout time.Duration) *fixture {
	t.Helper()

	clk := clock.Fake(epoch)
	f := &fixture{
		repo:      repo,
		sessions:  sessionstate.New(nil, clk, config.SessionConfig{}, zerolog.Nop()),
		notifier:  testutil.NewNotifier(),
		publisher: &testutil.Publisher{},
		disputes:  &recordingDisputes{},
		clock:     clk,
	}
	f.service = New(Dependencies{
		Transactions: repo,
		Sessions:     f.sessions,
		Notifier:     f.notifier,
		Renderer: promptpay.NewRenderer(config.PromptPayConfig{
			BaseURL:     "https://promptpay.io",
			FallbackURL: "https://quickchart.io/qr",
		}, zerolog.Nop()),
		Payees:    payees,
		IDs:       &testutil.IDs{},
		Disputes:  f.disputes,
		Publisher: f.publisher,
		Clock:     clk,
	},
		config.AdminConfig{IDs: []string{admin}},
		config.EscrowConfig{
			EscalationWindow:  5 * time.Minute,
			RetentionWindow:   24 * time.Hour,
			RetentionInterval: 10 * time.Minute,
			StoreTimeout:      storeTimeout,
			NotifyTimeout:     time.Second,
			MaxWriteAttempts:  3,
		},
		zerolog.Nop(),
	)
	return f
}

func (f *fixture) stored(t *testing.T, id string) domain.Transaction {
	t.Helper()
	tx, err := f.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	return tx
}

// advanceTo drives a fresh transaction forward to the given status.
func (f *fixture) advanceTo(t *testing.T, status domain.TransactionStatus) domain.Transaction {
	t.Helper()
	ctx := context.Background()

	tx, err := f.service.CreateTransaction(ctx, seller, details)
	require.NoError(t, err)
	steps := []struct {
		reached domain.TransactionStatus
		run     func() error
	}{
		{domain.StatusWaitingPayment, func() error { _, err := f.service.JoinAsBuyer(ctx, buyer, tx.TransactionID); return err }},
		{domain.StatusPaymentVerification, func() error {
			_, err := f.service.SubmitPaymentProof(ctx, buyer, tx.TransactionID, "https://cdn.example/proof.jpg")
			return err
		}},
		{domain.StatusPaid, func() error {
			_, err := f.service.AdminVerifyPayment(ctx, admin, tx.TransactionID, DecisionConfirm)
			return err
		}},
		{domain.StatusDelivering, func() error { _, err := f.service.ConfirmDelivery(ctx, seller, tx.TransactionID); return err }},
		{domain.StatusAwaitingSellerPayment, func() error { _, err := f.service.ConfirmReceipt(ctx, buyer, tx.TransactionID); return err }},
		{domain.StatusCompleted, func() error {
			if _, err := f.service.SubmitSellerBankInfo(ctx, seller, tx.TransactionID, "กสิกรไทย|0899999999|สมชาย ใจดี"); err != nil {
				return err
			}
			_, err := f.service.ConfirmSellerPayout(ctx, admin, tx.TransactionID)
			return err
		}},
	}

	if status == domain.StatusWaitingBuyer {
		return f.stored(t, tx.TransactionID)
	}
	for _, step := range steps {
		require.NoError(t, step.run())
		if step.reached == status {
			break
		}
	}
	stored := f.stored(t, tx.TransactionID)
	require.Equal(t, status, stored.Status)
	return stored
}

func TestCreateTransaction(t *testing.T) {
	f := newFixture(t)

	tx, err := f.service.CreateTransaction(context.Background(), seller, details)
	require.NoError(t, err)

	assert.Equal(t, "TXTEST0000000001", tx.TransactionID)
	assert.Equal(t, domain.StatusWaitingBuyer, tx.Status)
	assert.Empty(t, tx.BuyerID)
	assert.Nil(t, tx.PaymentAmount)
	assert.Equal(t, epoch, tx.CreatedAt)
	assert.Equal(t, tx, f.stored(t, tx.TransactionID))

	msgs := f.notifier.To(seller)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Text, "1,700 บาท")
	assert.Equal(t, tx.TransactionID, msgs[1].Text)

	entry, ok := f.sessions.Get(seller)
	require.True(t, ok)
	assert.Equal(t, domain.SessionTransactionCreated, entry.State)
	assert.Equal(t, tx.TransactionID, entry.Data.TransactionID)
	assert.Equal(t, 1, f.publisher.TransactionCount())
}

func TestCreateTransactionValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		details domain.GameDetails
	}{
		{"zero price", domain.GameDetails{Game: "ROV", Level: "L1", Price: 0}},
		{"negative price", domain.GameDetails{Game: "ROV", Level: "L1", Price: -10}},
		{"missing game", domain.GameDetails{Level: "L1", Price: 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.CreateTransaction(ctx, seller, tt.details)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	_, total, err := f.service.ListTransactions(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestStartSellerFlow(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.service.StartSellerFlow(context.Background(), seller))

	entry, ok := f.sessions.Get(seller)
	require.True(t, ok)
	assert.Equal(t, domain.SessionAwaitingGameDetails, entry.State)
	assert.True(t, f.notifier.Contains(seller, "ค่ากลาง 50 บาท"))
}

func TestRequestPaymentBeforeJoinIsStateError(t *testing.T) {
	f := newFixture(t)
	tx := f.advanceTo(t, domain.StatusWaitingBuyer)

	_, err := f.service.RequestPayment(context.Background(), buyer, tx.TransactionID)
	assert.ErrorIs(t, err, domain.ErrState)
	assert.Equal(t, domain.StatusWaitingBuyer, f.stored(t, tx.TransactionID).Status)
}

func TestJoinAsBuyer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.advanceTo(t, domain.StatusWaitingBuyer)
	f.notifier.Reset()

	joined, err := f.service.JoinAsBuyer(ctx, buyer, tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, buyer, joined.BuyerID)
	assert.Equal(t, domain.StatusWaitingPayment, joined.Status)
	assert.Equal(t, int64(2), joined.Version)

	assert.True(t, f.notifier.HasPayload(buyer, "PAY_NOW_"+tx.TransactionID))
	assert.True(t, f.notifier.Contains(buyer, "รวม: 1,750 บาท"))
	assert.True(t, f.notifier.Contains(seller, "รวม: 1,750 บาท"))

	entry, ok := f.sessions.Get(buyer)
	require.True(t, ok)
	assert.Equal(t, domain.SessionBuyerJoined, entry.State)
}

func TestJoinAsBuyerGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.advanceTo(t, domain.StatusWaitingBuyer)

	_, err := f.service.JoinAsBuyer(ctx, buyer, "TXMISSING")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.service.JoinAsBuyer(ctx, seller, tx.TransactionID)
	assert.ErrorIs(t, err, domain.ErrRole)

	_, err = f.service.JoinAsBuyer(ctx, buyer, tx.TransactionID)
	require.NoError(t, err)
	sellerMsgs := len(f.notifier.To(seller))
	buyerMsgs := len(f.notifier.To(buyer))

	_, err = f.service.JoinAsBuyer(ctx, other, tx.TransactionID)
	require.ErrorIs(t, err, domain.ErrConflict)
	var derr *domain.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, buyer, derr.Conflict)

	again, err := f.service.JoinAsBuyer(ctx, buyer, tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, buyer, again.BuyerID)
	assert.Equal(t, int64(2), again.Version, "idempotent join does not write")
	assert.Len(t, f.notifier.To(seller), sellerMsgs, "seller is not notified twice")
	assert.Len(t, f.notifier.To(buyer), buyerMsgs+1, "buyer gets the prompt again")
	assert.True(t, f.notifier.HasPayload(buyer, "PAY_NOW_"+tx.TransactionID))
}

func TestJoinAsBuyerRequiresBuyerID(t *testing.T) {
	f := newFixture(t)
	tx := f.advanceTo(t, domain.StatusWaitingBuyer)

	_, err := f.service.JoinAsBuyer(context.Background(), "", tx.TransactionID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	stored := f.stored(t, tx.TransactionID)
	assert.Equal(t, domain.StatusWaitingBuyer, stored.Status)
	assert.Empty(t, stored.BuyerID)
	assert.Equal(t, int64(1), stored.Version)
}

func TestRequestPaymentFallsBackWhenAdminLookupStalls(t *testing.T) {
	payees := promptpay.NewPayeeResolver(stalledAdmins{}, admin, payee, zerolog.Nop())
	f := buildFixture(t, transactionrepo.NewMemory(), payees, 50*time.Millisecond)
	tx := f.advanceTo(t, domain.StatusWaitingPayment)

	type result struct {
		ref domain.PaymentReference
		err error
	}
	done := make(chan result, 1)
	go func() {
		ref, err := f.service.RequestPayment(context.Background(), buyer, tx.TransactionID)
		done <- result{ref, err}
	}()

	select {
	case res := <-done:
		require.NoError(t, res.err)
		assert.Equal(t, "https://promptpay.io/"+payee+"/1750.png", res.ref.URL)
	case <-time.After(2 * time.Second):
		t.Fatal("RequestPayment did not return after the store timeout")
	}
}

func TestRequestPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.advanceTo(t, domain.StatusWaitingPayment)

	_, err := f.service.RequestPayment(ctx, other, tx.TransactionID)
	assert.ErrorIs(t, err, domain.ErrRole)

	ref, err := f.service.RequestPayment(ctx, buyer, tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, int64(1750), ref.Amount)
	assert.Equal(t, "https://promptpay.io/"+payee+"/1750.png", ref.URL)
	assert.Equal(t, tx.TransactionID, ref.Reference)

	stored := f.stored(t, tx.TransactionID)
	require.NotNil(t, stored.PaymentAmount)
	assert.Equal(t, stored.GameDetails.Price+domain.EscrowFee, *stored.PaymentAmount)
	assert.Equal(t, domain.StatusWaitingPayment, stored.Status)

	last, ok := f.notifier.Last(buyer)
	require.True(t, ok)
	assert.Equal(t, ref.URL, last.ImageURL)
	assert.True(t, f.notifier.HasPayload(buyer, "PAYMENT_CONFIRMED_"+tx.TransactionID))
	assert.True(t, f.notifier.HasPayload(buyer, "REPORT_PAYMENT_"+tx.TransactionID))

	_, err = f.service.RequestPayment(ctx, buyer, tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, stored.Version, f.stored(t, tx.TransactionID).Version, "amount is only written once")
}

func TestHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.advanceTo(t, domain.StatusWaitingPayment)

	_, err := f.service.RequestPayment(ctx, buyer, tx.TransactionID)
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	proofed, err := f.service.SubmitPaymentProof(ctx, buyer, tx.TransactionID, "https://cdn.example/slip.jpg")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaymentVerification, proofed.Status)
	assert.Equal(t, "https://cdn.example/slip.jpg", proofed.PaymentProof.URL)
	assert.Equal(t, epoch.Add(time.Minute), proofed.PaymentProof.UploadedAt)
	assert.False(t, proofed.PaymentVerification.Verified)
	assert.True(t, f.notifier.HasPayload(admin, "ADMIN_CONFIRM_PAYMENT_"+tx.TransactionID))
	assert.True(t, f.notifier.HasPayload(admin, "ADMIN_REJECT_PAYMENT_"+tx.TransactionID))
	adminMsg, _ := f.notifier.Last(admin)
	assert.Equal(t, "https://cdn.example/slip.jpg", adminMsg.ImageURL)

	paid, err := f.service.AdminVerifyPayment(ctx, admin, tx.TransactionID, DecisionConfirm)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paid.PaymentVerification.Verified)
	assert.Equal(t, admin, paid.PaymentVerification.VerifiedBy)
	assert.True(t, f.notifier.HasPayload(seller, "DELIVERED_"+tx.TransactionID))

	_, err = f.service.ConfirmDelivery(ctx, buyer, tx.TransactionID)
	assert.ErrorIs(t, err, domain.ErrRole)

	delivering, err := f.service.ConfirmDelivery(ctx, seller, tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivering, delivering.Status)
	require.NotNil(t, delivering.DeliveredAt)
	assert.True(t, f.notifier.HasPayload(buyer, "CONFIRM_RECEIPT_"+tx.TransactionID))
	assert.True(t, f.notifier.HasPayload(buyer, "NOT_ACCOUT_"+tx.TransactionID))

	received, err := f.service.ConfirmReceipt(ctx, buyer, tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAwaitingSellerPayment, received.Status)
	assert.True(t, f.notifier.Contains(seller, "1,700 บาท"))
	entry, ok := f.sessions.Get(seller)
	require.True(t, ok)
	assert.Equal(t, domain.SessionAwaitingBankInfo, entry.State)

	withBank, err := f.service.SubmitSellerBankInfo(ctx, seller, tx.TransactionID, " กสิกรไทย | 0899999999 | สมชาย ใจดี ")
	require.NoError(t, err)
	require.NotNil(t, withBank.SellerBankInfo)
	assert.Equal(t, domain.BankInfo{BankName: "กสิกรไทย", AccountNumber: "0899999999", AccountName: "สมชาย ใจดี", PromptPayNumber: "0899999999"}, *withBank.SellerBankInfo)
	assert.True(t, f.notifier.HasPayload(admin, "ADMIN_PAID_SELLER_"+tx.TransactionID))
	assert.True(t, f.notifier.HasPayload(admin, "ADMIN_PAYMENT_PROBLEM_"+tx.TransactionID))
	payoutMsg, _ := f.notifier.Last(admin)
	assert.Equal(t, "https://promptpay.io/0899999999/1700.png", payoutMsg.ImageURL)
	_, ok = f.sessions.Get(seller)
	assert.False(t, ok)

	completed, err := f.service.ConfirmSellerPayout(ctx, admin, tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.Equal(t, int64(1700), completed.PayoutAmount())
	assert.True(t, f.notifier.Contains(seller, "ระบบได้โอนเงินให้คุณแล้ว"))

	stats, err := f.service.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ByStatus[domain.StatusCompleted])
}

func TestAdminConfirmIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.advanceTo(t, domain.StatusPaid)
	before := f.stored(t, tx.TransactionID)
	sent := len(f.notifier.Sent())

	again, err := f.service.AdminVerifyPayment(ctx, admin, tx.TransactionID, DecisionConfirm)
	require.NoError(t, err)
	assert.Equal(t, before, again)
	assert.Equal(t, before, f.stored(t, tx.TransactionID))
	assert.Len(t, f.notifier.Sent(), sent, "no duplicate notifications")

	_, err = f.service.ConfirmDelivery(ctx, seller, tx.TransactionID)
	require.NoError(t, err)
	_, err = f.service.AdminVerifyPayment(ctx, admin, tx.TransactionID, DecisionConfirm)
	assert.NoError(t, err, "repeat confirmation after delivery is still a no-op")
	assert.Equal(t, domain.StatusDelivering, f.stored(t, tx.TransactionID).Status)
}

func TestAdminReject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.advanceTo(t, domain.StatusPaymentVerification)

	rejected, err := f.service.AdminVerifyPayment(ctx, admin, tx.TransactionID, DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaitingPayment, rejected.Status)
	assert.False(t, rejected.PaymentVerification.Verified)
	assert.Equal(t, admin, rejected.PaymentVerification.VerifiedBy)
	assert.True(t, f.notifier.HasPayload(buyer, "UPLOAD_PROOF_"+tx.TransactionID))

	entry, ok := f.sessions.Get(buyer)
	require.True(t, ok)
	assert.Equal(t, domain.SessionAwaitingPaymentProof, entry.State)

	_, err = f.service.AdminVerifyPayment(ctx, admin, tx.TransactionID, DecisionReject)
	assert.ErrorIs(t, err, domain.ErrState)

	resubmitted, err := f.service.SubmitPaymentProof(ctx, buyer, "", "https://cdn.example/slip2.jpg")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaymentVerification, resubmitted.Status)
	assert.Equal(t, "https://cdn.example/slip2.jpg", resubmitted.PaymentProof.URL)
}

func TestAdminOperationsRequireAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.advanceTo(t, domain.StatusPaymentVerification)

	_, err := f.service.AdminVerifyPayment(ctx, buyer, tx.TransactionID, DecisionConfirm)
	assert.ErrorIs(t, err, domain.ErrRole)
	_, err = f.service.Cancel(ctx, seller, tx.TransactionID)
	assert.ErrorIs(t, err, domain.ErrRole)
	_, err = f.service.ConfirmSellerPayout(ctx, seller, tx.TransactionID)
	assert.ErrorIs(t, err, domain.ErrRole)
	_, err = f.service.ReportPayoutProblem(ctx, seller, tx.TransactionID)
	assert.ErrorIs(t, err, domain.ErrRole)
	_, err = f.service.AdminVerifyPayment(ctx, admin, tx.TransactionID, Decision("maybe"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, domain.StatusPaymentVerification, f.stored(t, tx.TransactionID).Status)
}

func TestSubmitPaymentProofGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.advanceTo(t, domain.StatusWaitingPayment)

	_, err := f.service.SubmitPaymentProof(ctx, buyer, tx.TransactionID, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.service.SubmitPaymentProof(ctx, other, tx.TransactionID, "https://cdn.example/x.jpg")
	assert.ErrorIs(t, err, domain.ErrRole)
	_, err = f.service.SubmitPaymentProof(ctx, other, "", "https://cdn.example/x.jpg")
	assert.ErrorIs(t, err, domain.ErrNotFound, "no waiting transaction for this sender")

	proofed, err := f.service.SubmitPaymentProof(ctx, buyer, "", "https://cdn.example/x.jpg")
	require.NoError(t, err)
	assert.Equal(t, tx.TransactionID, proofed.TransactionID)
	require.NotNil(t, proofed.PaymentAmount, "amount is fixed even without a pay-now click")
	assert.Equal(t, int64(1750), *proofed.PaymentAmount)
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	waiting := f.advanceTo(t, domain.StatusWaitingBuyer)
	f.notifier.Reset()
	cancelled, err := f.service.Cancel(ctx, admin, waiting.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.True(t, f.notifier.Contains(seller, "ถูกยกเลิกแล้ว"))
	assert.True(t, f.notifier.Contains(admin, "รอผู้ซื้อ"))

	_, err = f.service.JoinAsBuyer(ctx, buyer, waiting.TransactionID)
	assert.ErrorIs(t, err, domain.ErrState, "cancelled is terminal")
	_, err = f.service.Cancel(ctx, admin, waiting.TransactionID)
	assert.ErrorIs(t, err, domain.ErrState)

	delivering := f.advanceTo(t, domain.StatusDelivering)
	_, err = f.service.Cancel(ctx, admin, delivering.TransactionID)
	require.NoError(t, err)
	assert.True(t, f.notifier.Contains(buyer, "ถูกยกเลิกแล้ว"))
	_, err = f.service.AdminVerifyPayment(ctx, admin, delivering.TransactionID, DecisionConfirm)
	assert.ErrorIs(t, err, domain.ErrState, "cancelled is never treated as settled")
}

func TestCancelCompletedIsStateError(t *testing.T) {
	f := newFixture(t)
	tx := f.advanceTo(t, domain.StatusCompleted)

	_, err := f.service.Cancel(context.Background(), admin, tx.TransactionID)
	assert.ErrorIs(t, err, domain.ErrState)
	assert.Equal(t, domain.StatusCompleted, f.stored(t, tx.TransactionID).Status)
}

func TestCancelAwaitingPayoutIsStateError(t *testing.T) {
	f := newFixture(t)
	tx := f.advanceTo(t, domain.StatusAwaitingSellerPayment)

	_, err := f.service.Cancel(context.Background(), admin, tx.TransactionID)
	assert.ErrorIs(t, err, domain.ErrState)
	assert.Equal(t, domain.StatusAwaitingSellerPayment, f.stored(t, tx.TransactionID).Status)
}

func TestReportNonDeliveryEscalates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.advanceTo(t, domain.StatusDelivering)
	before := f.stored(t, tx.TransactionID)

	_, err := f.service.ReportNonDelivery(ctx, seller, tx.TransactionID)
	assert.ErrorIs(t, err, domain.ErrRole)

	_, err = f.service.ReportNonDelivery(ctx, buyer, tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, before, f.stored(t, tx.TransactionID), "no status change")
	assert.True(t, f.notifier.Contains(seller, "ผู้ซื้อยังไม่ได้รับบัญชีจากคุณ"))
	assert.True(t, f.notifier.HasPayload(buyer, "REFUN_"+tx.TransactionID))
	assert.False(t, f.notifier.HasPayload(admin, "CANCELLED_"+tx.TransactionID))

	f.clock.Advance(4 * time.Minute)
	assert.False(t, f.notifier.HasPayload(admin, "CANCELLED_"+tx.TransactionID))

	f.clock.Advance(time.Minute)
	assert.True(t, f.notifier.HasPayload(admin, "CANCELLED_"+tx.TransactionID))
	assert.Equal(t, domain.StatusDelivering, f.stored(t, tx.TransactionID).Status, "never cancels on its own")
}

func TestEscalationStopsOnReceipt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.advanceTo(t, domain.StatusDelivering)

	_, err := f.service.ReportNonDelivery(ctx, buyer, tx.TransactionID)
	require.NoError(t, err)
	_, err = f.service.ConfirmReceipt(ctx, buyer, tx.TransactionID)
	require.NoError(t, err)

	f.clock.Advance(10 * time.Minute)
	assert.False(t, f.notifier.HasPayload(admin, "CANCELLED_"+tx.TransactionID))
}

func TestReportNonDeliveryOutsideDelivering(t *testing.T) {
	f := newFixture(t)
	tx := f.advanceTo(t, domain.StatusPaid)

	_, err := f.service.ReportNonDelivery(context.Background(), buyer, tx.TransactionID)
	assert.ErrorIs(t, err, domain.ErrState)
	_, err = f.service.RequestRefund(context.Background(), buyer, tx.TransactionID)
	assert.ErrorIs(t, err, domain.ErrState)
}

func TestRequestRefund(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.advanceTo(t, domain.StatusDelivering)

	_, err := f.service.RequestRefund(ctx, other, tx.TransactionID)
	assert.ErrorIs(t, err, domain.ErrRole)

	_, err = f.service.RequestRefund(ctx, buyer, tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivering, f.stored(t, tx.TransactionID).Status)
	assert.True(t, f.notifier.Contains(seller, "ผู้ซื้อขอคืนเงิน"))
	assert.True(t, f.notifier.HasPayload(admin, "CANCELLED_"+tx.TransactionID))

	require.Len(t, f.disputes.calls, 1)
	assert.Equal(t, buyer, f.disputes.calls[0].UserID)
	assert.Equal(t, tx.TransactionID, f.disputes.calls[0].TransactionID)

	cancelled, err := f.service.Cancel(ctx, admin, tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
}

func TestSubmitSellerBankInfo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.advanceTo(t, domain.StatusAwaitingSellerPayment)

	_, err := f.service.SubmitSellerBankInfo(ctx, seller, tx.TransactionID, "กสิกรไทย 0899999999")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.service.SubmitSellerBankInfo(ctx, buyer, tx.TransactionID, "a|0899999999|c")
	assert.ErrorIs(t, err, domain.ErrRole)

	first, err := f.service.SubmitSellerBankInfo(ctx, seller, "", "SCB|0811111111|ชื่อแรก")
	require.NoError(t, err)
	assert.Equal(t, "SCB", first.SellerBankInfo.BankName)

	second, err := f.service.SubmitSellerBankInfo(ctx, seller, tx.TransactionID, "KBank|1234|ชื่อใหม่")
	require.NoError(t, err, "details can be overwritten until payout")
	assert.Equal(t, "ชื่อใหม่", second.SellerBankInfo.AccountName)
	last, _ := f.notifier.Last(admin)
	assert.Empty(t, last.ImageURL, "no QR for an invalid PromptPay number")
	assert.True(t, f.notifier.HasPayload(admin, "ADMIN_PAID_SELLER_"+tx.TransactionID))

	_, err = f.service.ConfirmSellerPayout(ctx, admin, tx.TransactionID)
	require.NoError(t, err)
	_, err = f.service.SubmitSellerBankInfo(ctx, seller, tx.TransactionID, "SCB|0811111111|ชื่อแรก")
	assert.ErrorIs(t, err, domain.ErrState)
}

func TestReportPayoutProblem(t *testing.T) {
	f := newFixture(t)
	tx := f.advanceTo(t, domain.StatusAwaitingSellerPayment)
	before := f.stored(t, tx.TransactionID)

	_, err := f.service.ReportPayoutProblem(context.Background(), admin, tx.TransactionID)
	require.NoError(t, err)
	assert.True(t, f.notifier.Contains(admin, "รับทราบปัญหาการโอนเงิน"))
	assert.Equal(t, before, f.stored(t, tx.TransactionID))
}

func TestTerminalTransactionsRejectEveryOperation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tx := f.advanceTo(t, domain.StatusCompleted)
	id := tx.TransactionID

	ops := map[string]func() error{
		"join":     func() error { _, err := f.service.JoinAsBuyer(ctx, other, id); return err },
		"pay":      func() error { _, err := f.service.RequestPayment(ctx, buyer, id); return err },
		"proof":    func() error { _, err := f.service.SubmitPaymentProof(ctx, buyer, id, "u"); return err },
		"reject":   func() error { _, err := f.service.AdminVerifyPayment(ctx, admin, id, DecisionReject); return err },
		"deliver":  func() error { _, err := f.service.ConfirmDelivery(ctx, seller, id); return err },
		"receipt":  func() error { _, err := f.service.ConfirmReceipt(ctx, buyer, id); return err },
		"notRecv":  func() error { _, err := f.service.ReportNonDelivery(ctx, buyer, id); return err },
		"refund":   func() error { _, err := f.service.RequestRefund(ctx, buyer, id); return err },
		"bankInfo": func() error { _, err := f.service.SubmitSellerBankInfo(ctx, seller, id, "a|b|c"); return err },
		"cancel":   func() error { _, err := f.service.Cancel(ctx, admin, id); return err },
		"payout":   func() error { _, err := f.service.ConfirmSellerPayout(ctx, admin, id); return err },
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, op(), domain.ErrState)
		})
	}
	assert.Equal(t, tx, f.stored(t, id))
}

func TestConcurrentJoinBindsOneBuyer(t *testing.T) {
	f := newFixture(t)
	tx := f.advanceTo(t, domain.StatusWaitingBuyer)

	const buyers = 12
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.service.JoinAsBuyer(context.Background(), string(rune('a'+i)), tx.TransactionID)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, domain.ErrConflict):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(buyers-1), conflicts.Load())
	stored := f.stored(t, tx.TransactionID)
	assert.NotEmpty(t, stored.BuyerID)
	assert.Equal(t, int64(2), stored.Version)
}

func TestConcurrentAdminConfirmTransitionsOnce(t *testing.T) {
	f := newFixture(t)
	tx := f.advanceTo(t, domain.StatusPaymentVerification)
	published := f.publisher.TransactionCount()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.AdminVerifyPayment(context.Background(), admin, tx.TransactionID, DecisionConfirm)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, published+1, f.publisher.TransactionCount())
	assert.Equal(t, domain.StatusPaid, f.stored(t, tx.TransactionID).Status)
	delivered := 0
	for _, m := range f.notifier.To(seller) {
		for _, b := range m.Buttons {
			if b.Payload == "DELIVERED_"+tx.TransactionID {
				delivered++
			}
		}
	}
	assert.Equal(t, 1, delivered)
}

// staleRepo fails the first n updates as if another writer won.
type staleRepo struct {
	*transactionrepo.MemoryRepository
	remaining atomic.Int32
}

func (r *staleRepo) Update(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	if r.remaining.Add(-1) >= 0 {
		return domain.Transaction{}, domain.ErrStaleWrite
	}
	return r.MemoryRepository.Update(ctx, tx)
}

func TestStaleWritesAreRetried(t *testing.T) {
	repo := &staleRepo{MemoryRepository: transactionrepo.NewMemory()}
	f := newFixtureWithRepo(t, repo)
	ctx := context.Background()
	tx, err := f.service.CreateTransaction(ctx, seller, details)
	require.NoError(t, err)

	repo.remaining.Store(2)
	joined, err := f.service.JoinAsBuyer(ctx, buyer, tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, buyer, joined.BuyerID)

	repo.remaining.Store(3)
	_, err = f.service.RequestPayment(ctx, buyer, tx.TransactionID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Nil(t, f.stored(t, tx.TransactionID).PaymentAmount, "failed write leaves the row unchanged")
}

// brokenRepo fails every write.
type brokenRepo struct {
	*transactionrepo.MemoryRepository
}

func (brokenRepo) Update(context.Context, domain.Transaction) (domain.Transaction, error) {
	return domain.Transaction{}, errors.New("connection reset")
}

func TestStoreFailureIsExternalAndSilent(t *testing.T) {
	repo := brokenRepo{transactionrepo.NewMemory()}
	f := newFixtureWithRepo(t, repo)
	ctx := context.Background()
	tx, err := f.service.CreateTransaction(ctx, seller, details)
	require.NoError(t, err)
	f.notifier.Reset()

	_, err = f.service.JoinAsBuyer(ctx, buyer, tx.TransactionID)
	assert.ErrorIs(t, err, domain.ErrExternal)
	assert.Empty(t, f.notifier.Sent(), "nothing is announced for a write that did not land")
	assert.Empty(t, f.stored(t, tx.TransactionID).BuyerID)
}

func TestNotifierFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	tx := f.advanceTo(t, domain.StatusWaitingBuyer)
	f.notifier.Fail(buyer, errors.New("messenger down"))

	joined, err := f.service.JoinAsBuyer(context.Background(), buyer, tx.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaitingPayment, joined.Status)
	assert.Equal(t, buyer, f.stored(t, tx.TransactionID).BuyerID)
}

func TestListTransactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.advanceTo(t, domain.StatusWaitingBuyer)
	f.clock.Advance(time.Second)
	f.advanceTo(t, domain.StatusPaid)

	all, total, err := f.service.ListTransactions(ctx, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, domain.StatusPaid, all[0].Status)

	paid, total, err := f.service.ListTransactions(ctx, domain.TransactionFilter{Status: domain.StatusPaid})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, paid, 1)

	_, _, err = f.service.ListTransactions(ctx, domain.TransactionFilter{Status: "shipped"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRetentionSweep(t *testing.T) {
	f := newFixture(t)
	old := f.advanceTo(t, domain.StatusWaitingBuyer)
	f.clock.Advance(20 * time.Hour)
	fresh := f.advanceTo(t, domain.StatusWaitingBuyer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.service.StartRetentionSweep(ctx) }()

	f.clock.BlockUntil(1)
	f.clock.Advance(5 * time.Hour)

	assert.Eventually(t, func() bool {
		_, err := f.repo.GetByID(context.Background(), old.TransactionID)
		return errors.Is(err, domain.ErrNotFound)
	}, time.Second, 5*time.Millisecond)
	_, err := f.repo.GetByID(context.Background(), fresh.TransactionID)
	assert.NoError(t, err)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
