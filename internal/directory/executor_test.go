package directory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/smartclinic/clinic-portal/internal/booking"
	"github.com/smartclinic/clinic-portal/internal/directory"
	"github.com/smartclinic/clinic-portal/internal/scheduling"
)

// Mocks

type MockConfirmer struct {
	mock.Mock
}

func (m *MockConfirmer) Confirm(prompt string) bool {
	return m.Called(prompt).Bool(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(msg string) {
	m.Called(msg)
}

type MockSurface struct {
	mock.Mock
}

func (m *MockSurface) RemoveCard(doctorID int64) {
	m.Called(doctorID)
}

type MockRemover struct {
	mock.Mock
}

func (m *MockRemover) DeleteDoctor(ctx context.Context, id int64, token string) (scheduling.DeleteResult, error) {
	args := m.Called(ctx, id, token)
	return args.Get(0).(scheduling.DeleteResult), args.Error(1)
}

type MockStarter struct {
	mock.Mock
}

func (m *MockStarter) InitiateBooking(ctx context.Context, d scheduling.Doctor, evt booking.UIEvent) error {
	return m.Called(ctx, d, evt).Error(0)
}

type executorFixture struct {
	confirmer *MockConfirmer
	notifier  *MockNotifier
	surface   *MockSurface
	remover   *MockRemover
	starter   *MockStarter
	exec      *directory.Executor
}

func newFixture() *executorFixture {
	f := &executorFixture{
		confirmer: new(MockConfirmer),
		notifier:  new(MockNotifier),
		surface:   new(MockSurface),
		remover:   new(MockRemover),
		starter:   new(MockStarter),
	}
	f.exec = directory.NewExecutor(f.confirmer, f.notifier, f.surface, f.remover, f.starter, zerolog.Nop())
	return f
}

func TestExecutor_Delete(t *testing.T) {
	t.Run("confirmed success removes card and surfaces message", func(t *testing.T) {
		f := newFixture()
		f.confirmer.On("Confirm", mock.Anything).Return(true)
		f.remover.On("DeleteDoctor", mock.Anything, int64(7), "tok").
			Return(scheduling.DeleteResult{Success: true, Message: "Doctor successfully deleted!"}, nil)
		f.surface.On("RemoveCard", int64(7)).Return()
		f.notifier.On("Notify", "Doctor successfully deleted!").Return()

		err := f.exec.Execute(context.Background(), directory.Action{
			Kind: directory.ActionDelete, DoctorID: 7, Token: "tok",
		}, booking.UIEvent{})

		assert.NoError(t, err)
		f.surface.AssertCalled(t, "RemoveCard", int64(7))
		f.notifier.AssertCalled(t, "Notify", "Doctor successfully deleted!")
	})

	t.Run("reported failure keeps card in place", func(t *testing.T) {
		f := newFixture()
		f.confirmer.On("Confirm", mock.Anything).Return(true)
		f.remover.On("DeleteDoctor", mock.Anything, int64(7), "tok").
			Return(scheduling.DeleteResult{Success: false, Message: "Doctor deletion failed!"}, nil)
		f.notifier.On("Notify", "Doctor deletion failed!").Return()

		err := f.exec.Execute(context.Background(), directory.Action{
			Kind: directory.ActionDelete, DoctorID: 7, Token: "tok",
		}, booking.UIEvent{})

		assert.NoError(t, err)
		f.surface.AssertNotCalled(t, "RemoveCard", mock.Anything)
		f.notifier.AssertCalled(t, "Notify", "Doctor deletion failed!")
	})

	t.Run("transport error keeps card and surfaces failure message", func(t *testing.T) {
		f := newFixture()
		f.confirmer.On("Confirm", mock.Anything).Return(true)
		f.remover.On("DeleteDoctor", mock.Anything, int64(7), "tok").
			Return(scheduling.DeleteResult{Success: false, Message: "Doctor deletion failed!"}, errors.New("boom"))
		f.notifier.On("Notify", "Doctor deletion failed!").Return()

		err := f.exec.Execute(context.Background(), directory.Action{
			Kind: directory.ActionDelete, DoctorID: 7, Token: "tok",
		}, booking.UIEvent{})

		assert.NoError(t, err)
		f.surface.AssertNotCalled(t, "RemoveCard", mock.Anything)
	})

	t.Run("declined confirm makes no network call", func(t *testing.T) {
		f := newFixture()
		f.confirmer.On("Confirm", mock.Anything).Return(false)

		err := f.exec.Execute(context.Background(), directory.Action{
			Kind: directory.ActionDelete, DoctorID: 7, Token: "tok",
		}, booking.UIEvent{})

		assert.NoError(t, err)
		f.remover.AssertNotCalled(t, "DeleteDoctor", mock.Anything, mock.Anything, mock.Anything)
		f.notifier.AssertNotCalled(t, "Notify", mock.Anything)
	})
}

func TestExecutor_PromptLogin(t *testing.T) {
	f := newFixture()
	f.notifier.On("Notify", directory.LoginPromptMessage).Return()

	err := f.exec.Execute(context.Background(), directory.Action{Kind: directory.ActionPromptLogin}, booking.UIEvent{})

	assert.NoError(t, err)
	f.notifier.AssertCalled(t, "Notify", directory.LoginPromptMessage)
	f.remover.AssertNotCalled(t, "DeleteDoctor", mock.Anything, mock.Anything, mock.Anything)
	f.starter.AssertNotCalled(t, "InitiateBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecutor_Book(t *testing.T) {
	t.Run("delegates doctor and event to the orchestrator", func(t *testing.T) {
		f := newFixture()
		doctor := scheduling.Doctor{ID: 7, Name: "Dr. A"}
		evt := booking.UIEvent{Target: "card-7"}
		f.starter.On("InitiateBooking", mock.Anything, doctor, evt).Return(nil)

		err := f.exec.Execute(context.Background(), directory.Action{
			Kind: directory.ActionBook, Doctor: &doctor, Token: "tok123",
		}, evt)

		assert.NoError(t, err)
		f.starter.AssertCalled(t, "InitiateBooking", mock.Anything, doctor, evt)
	})

	t.Run("propagates the login-required signal", func(t *testing.T) {
		f := newFixture()
		doctor := scheduling.Doctor{ID: 7}
		f.starter.On("InitiateBooking", mock.Anything, doctor, mock.Anything).Return(booking.ErrLoginRequired)

		err := f.exec.Execute(context.Background(), directory.Action{
			Kind: directory.ActionBook, Doctor: &doctor,
		}, booking.UIEvent{})

		assert.ErrorIs(t, err, booking.ErrLoginRequired)
	})

	t.Run("book without a doctor is an error", func(t *testing.T) {
		f := newFixture()

		err := f.exec.Execute(context.Background(), directory.Action{Kind: directory.ActionBook}, booking.UIEvent{})

		assert.Error(t, err)
	})
}

func TestExecutor_NoneAndUnknown(t *testing.T) {
	f := newFixture()

	assert.NoError(t, f.exec.Execute(context.Background(), directory.Action{Kind: directory.ActionNone}, booking.UIEvent{}))
	assert.Error(t, f.exec.Execute(context.Background(), directory.Action{Kind: directory.ActionKind("bogus")}, booking.UIEvent{}))
}
