package procurement

import (
	"context"
	"fmt"
	"time"

	"spare-parts-api-server/internal/inventory"
	"spare-parts-api-server/internal/models"
	"spare-parts-api-server/internal/store"
)

// fakePieceStore mô phỏng PieceStore trong bộ nhớ với cùng ngữ nghĩa
// cập nhật có điều kiện như bản MongoDB.
type fakePieceStore struct {
	pieces map[string]*models.Piece

	placeOrderErr error
	withdrawErr   error

	kitEntries []models.MovementEntry
}

func newFakePieceStore(pieces ...*models.Piece) *fakePieceStore {
	s := &fakePieceStore{pieces: make(map[string]*models.Piece)}
	for _, p := range pieces {
		cp := *p
		s.pieces[p.PieceRef] = &cp
	}
	return s
}

func (s *fakePieceStore) get(ref string) (*models.Piece, error) {
	p, ok := s.pieces[ref]
	if !ok {
		return nil, fmt.Errorf("piece %q: %w", ref, inventory.ErrNotFound)
	}
	return p, nil
}

func (s *fakePieceStore) FindByRef(_ context.Context, ref string) (*models.Piece, error) {
	p, err := s.get(ref)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (s *fakePieceStore) SubmitApproval(_ context.Context, ref, requestedBy string) (*models.Piece, error) {
	p, err := s.get(ref)
	if err != nil {
		return nil, err
	}
	if p.ApprovalStatus != models.ApprovalPending {
		return nil, fmt.Errorf("approval already decided for piece %q: %w", ref, inventory.ErrInvalidTransition)
	}
	p.ApprovalRequestedBy = requestedBy
	cp := *p
	return &cp, nil
}

func (s *fakePieceStore) Approve(_ context.Context, ref, actor, note string) (*models.Piece, error) {
	return s.decide(ref, models.ApprovalApproved, actor, note)
}

func (s *fakePieceStore) Refuse(_ context.Context, ref, actor, note string) (*models.Piece, error) {
	return s.decide(ref, models.ApprovalRefused, actor, note)
}

func (s *fakePieceStore) decide(ref, to, actor, note string) (*models.Piece, error) {
	p, err := s.get(ref)
	if err != nil {
		return nil, err
	}
	if p.ApprovalStatus != models.ApprovalPending {
		return nil, fmt.Errorf("piece %q is not pending approval: %w", ref, inventory.ErrInvalidTransition)
	}
	p.ApprovalStatus = to
	p.ApprovalActor = actor
	p.ApprovalNote = note
	cp := *p
	return &cp, nil
}

func (s *fakePieceStore) ResetApproval(_ context.Context, ref string) (*models.Piece, error) {
	p, err := s.get(ref)
	if err != nil {
		return nil, err
	}
	if p.ApprovalStatus != models.ApprovalRefused {
		return nil, fmt.Errorf("piece %q is not refused: %w", ref, inventory.ErrInvalidTransition)
	}
	p.ApprovalStatus = models.ApprovalPending
	p.ApprovalActor = ""
	p.ApprovalNote = ""
	cp := *p
	return &cp, nil
}

func (s *fakePieceStore) PlaceOrder(_ context.Context, ref string, qty int, unitPrice float64, orderDate time.Time, note, submissionNo string) (*models.Piece, error) {
	if s.placeOrderErr != nil {
		return nil, s.placeOrderErr
	}
	p, err := s.get(ref)
	if err != nil {
		return nil, err
	}
	p.OnOrderQty = qty
	p.ReceivedQty = 0
	p.OutstandingQty = qty
	p.OrderDate = &orderDate
	p.OrderNote = note
	p.UnitPrice = unitPrice
	p.SubmissionNo = submissionNo
	cp := *p
	return &cp, nil
}

func (s *fakePieceStore) ReceiveTotal(_ context.Context, ref string) (*models.Piece, int, error) {
	p, err := s.get(ref)
	if err != nil {
		return nil, 0, err
	}
	if p.OutstandingQty <= 0 {
		return nil, 0, fmt.Errorf("piece %q has no outstanding order: %w", ref, inventory.ErrInvalidTransition)
	}
	received := p.OutstandingQty
	p.StockQty += received
	p.OnOrderQty = 0
	p.ReceivedQty = 0
	p.OutstandingQty = 0
	p.OrderDate = nil
	p.OrderNote = ""
	p.SubmissionNo = ""
	cp := *p
	return &cp, received, nil
}

func (s *fakePieceStore) ReceivePartial(_ context.Context, ref string, qty int) (*models.Piece, error) {
	p, err := s.get(ref)
	if err != nil {
		return nil, err
	}
	if p.OutstandingQty < qty {
		return nil, fmt.Errorf("quantity %d exceeds outstanding for piece %q: %w", qty, ref, inventory.ErrInvalidQuantity)
	}
	p.StockQty += qty
	p.ReceivedQty += qty
	p.OutstandingQty -= qty
	if p.OutstandingQty == 0 {
		p.OnOrderQty = 0
		p.ReceivedQty = 0
		p.OrderDate = nil
		p.OrderNote = ""
		p.SubmissionNo = ""
	}
	cp := *p
	return &cp, nil
}

func (s *fakePieceStore) QuickWithdraw(_ context.Context, ref string) (*models.Piece, error) {
	p, err := s.get(ref)
	if err != nil {
		return nil, err
	}
	if p.StockQty <= 0 {
		return nil, fmt.Errorf("piece %q has no stock left: %w", ref, inventory.ErrInvalidQuantity)
	}
	p.StockQty--
	cp := *p
	return &cp, nil
}

func (s *fakePieceStore) WithdrawKit(_ context.Context, lines []store.KitLine, actor string) error {
	if s.withdrawErr != nil {
		return s.withdrawErr
	}
	for _, line := range lines {
		p, err := s.get(line.PieceRef)
		if err != nil {
			return err
		}
		if p.StockQty < line.Qty {
			return &inventory.InsufficientStockError{PieceRefs: []string{line.PieceRef}}
		}
	}
	now := time.Now()
	for _, line := range lines {
		s.pieces[line.PieceRef].StockQty -= line.Qty
		s.kitEntries = append(s.kitEntries, models.MovementEntry{
			Operation: models.OpWithdrawal,
			PieceRef:  line.PieceRef,
			Quantity:  -line.Qty,
			Actor:     actor,
			Comment:   line.Comment,
			CreatedAt: now,
		})
	}
	return nil
}

// fakeSubmissionStore mô phỏng SubmissionStore trong bộ nhớ.
type fakeSubmissionStore struct {
	subs   map[string]*models.Submission
	quotes map[string]*models.PriceQuote // key: submissionRef + "|" + pieceRef

	insertErr     error
	transitionErr error
	quoteErr      error
	attachErr     error
}

func newFakeSubmissionStore(subs ...*models.Submission) *fakeSubmissionStore {
	s := &fakeSubmissionStore{
		subs:   make(map[string]*models.Submission),
		quotes: make(map[string]*models.PriceQuote),
	}
	for _, sub := range subs {
		cp := *sub
		s.subs[sub.SubmissionRef] = &cp
	}
	return s
}

func (s *fakeSubmissionStore) Insert(_ context.Context, sub *models.Submission) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	cp := *sub
	s.subs[sub.SubmissionRef] = &cp
	return nil
}

func (s *fakeSubmissionStore) FindByRef(_ context.Context, ref string) (*models.Submission, error) {
	sub, ok := s.subs[ref]
	if !ok {
		return nil, fmt.Errorf("submission %q: %w", ref, inventory.ErrNotFound)
	}
	cp := *sub
	return &cp, nil
}

func (s *fakeSubmissionStore) FindOpenForPiece(_ context.Context, pieceRef string) (*models.Submission, error) {
	var latest *models.Submission
	for _, sub := range s.subs {
		if sub.IsTerminal() || !sub.HasPiece(pieceRef) {
			continue
		}
		if latest == nil || sub.SentAt.After(latest.SentAt) {
			latest = sub
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("open submission for piece %q: %w", pieceRef, inventory.ErrNotFound)
	}
	cp := *latest
	return &cp, nil
}

func (s *fakeSubmissionStore) Transition(_ context.Context, ref string, from []string, to, note string) error {
	if s.transitionErr != nil {
		return s.transitionErr
	}
	sub, ok := s.subs[ref]
	if !ok {
		return fmt.Errorf("submission %q: %w", ref, inventory.ErrNotFound)
	}
	for _, f := range from {
		if sub.Status == f {
			sub.Status = to
			sub.StatusNote = note
			return nil
		}
	}
	return fmt.Errorf("submission %q cannot move to %s: %w", ref, to, inventory.ErrInvalidTransition)
}

func (s *fakeSubmissionStore) RecordQuote(_ context.Context, quote *models.PriceQuote) error {
	if s.quoteErr != nil {
		return s.quoteErr
	}
	key := quote.SubmissionRef + "|" + quote.PieceRef
	if _, exists := s.quotes[key]; exists {
		return fmt.Errorf("quote for submission %q piece %q: %w",
			quote.SubmissionRef, quote.PieceRef, inventory.ErrQuoteAlreadyExists)
	}
	cp := *quote
	s.quotes[key] = &cp
	return nil
}

func (s *fakeSubmissionStore) SetAttachment(_ context.Context, ref, objectKey string) error {
	if s.attachErr != nil {
		return s.attachErr
	}
	sub, ok := s.subs[ref]
	if !ok {
		return fmt.Errorf("submission %q: %w", ref, inventory.ErrNotFound)
	}
	if sub.IsTerminal() {
		return fmt.Errorf("submission %q is closed: %w", ref, inventory.ErrInvalidTransition)
	}
	sub.AttachmentKey = objectKey
	return nil
}

func (s *fakeSubmissionStore) SetReminderDate(_ context.Context, ref string, at *time.Time) error {
	sub, ok := s.subs[ref]
	if !ok {
		return fmt.Errorf("submission %q: %w", ref, inventory.ErrNotFound)
	}
	sub.ReminderDate = at
	return nil
}

func (s *fakeSubmissionStore) Delete(_ context.Context, ref string) error {
	sub, ok := s.subs[ref]
	if !ok {
		return fmt.Errorf("submission %q: %w", ref, inventory.ErrNotFound)
	}
	if !sub.IsTerminal() {
		return fmt.Errorf("submission %q is still open: %w", ref, inventory.ErrInvalidTransition)
	}
	delete(s.subs, ref)
	return nil
}

// fakeLedger ghi các dòng sổ cái vào bộ nhớ.
type fakeLedger struct {
	entries []models.MovementEntry
	closed  []string

	appendErr error
	closeErr  error
}

func (l *fakeLedger) Append(_ context.Context, entry *models.MovementEntry) error {
	if l.appendErr != nil {
		return l.appendErr
	}
	l.entries = append(l.entries, *entry)
	return nil
}

func (l *fakeLedger) CloseOrderEntry(_ context.Context, pieceRef string, _ time.Time) error {
	if l.closeErr != nil {
		return l.closeErr
	}
	l.closed = append(l.closed, pieceRef)
	return nil
}

// fakeNotifier đếm các thông báo đã gửi.
type fakeNotifier struct {
	sent      int
	reminders int
	decisions int
	orders    int
	alerts    int

	err error
}

func (n *fakeNotifier) SubmissionSent(context.Context, *models.Submission) error {
	n.sent++
	return n.err
}

func (n *fakeNotifier) SubmissionReminder(context.Context, *models.Submission) error {
	n.reminders++
	return n.err
}

func (n *fakeNotifier) ApprovalDecided(context.Context, *models.Piece) error {
	n.decisions++
	return n.err
}

func (n *fakeNotifier) OrderPlaced(context.Context, *models.Piece, int) error {
	n.orders++
	return n.err
}

func (n *fakeNotifier) ReorderAlert(context.Context, []models.Piece) error {
	n.alerts++
	return n.err
}
