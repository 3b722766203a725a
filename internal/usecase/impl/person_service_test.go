package impl

import (
	"context"
	"testing"

	"casevault/internal/domain/entity"
	domainerrors "casevault/internal/domain/errors"
	"casevault/internal/domain/service"
	"casevault/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonServiceUpdatePersonMergesFields(t *testing.T) {
	f := newFixture(t)
	f.seedCase(t, "c1", "MCN-100", entity.CaseStatusActive)
	svc := f.personService()

	phone := "555-0101"
	updated, err := svc.UpdatePerson(context.Background(), "person-c1", usecase.UpdatePersonInput{
		Phone: &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	// Fields not present in the input keep their previous values.
	assert.Equal(t, "Pat", updated.FirstName)
	assert.Equal(t, phone, f.store.GetPerson("person-c1").Phone)
	assert.Contains(t, f.eventTypes(), service.EventPersonUpdated)
}

func TestPersonServiceUpdatePersonReplacesAddresses(t *testing.T) {
	f := newFixture(t)
	f.seedCase(t, "c1", "MCN-100", entity.CaseStatusActive)
	svc := f.personService()

	updated, err := svc.UpdatePerson(context.Background(), "person-c1", usecase.UpdatePersonInput{
		Addresses: []usecase.AddressInput{
			{Street: "12 Oak St", City: "Springfield", State: "IL", Zip: "62701"},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Addresses, 1)
	assert.Equal(t, "12 Oak St", updated.Addresses[0].Street)
}

func TestPersonServiceUpdatePersonValidation(t *testing.T) {
	f := newFixture(t)
	f.seedCase(t, "c1", "MCN-100", entity.CaseStatusActive)
	svc := f.personService()
	ctx := context.Background()

	bad := "not-an-email"
	_, err := svc.UpdatePerson(ctx, "person-c1", usecase.UpdatePersonInput{Email: &bad})
	assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)

	_, err = svc.UpdatePerson(ctx, "missing", usecase.UpdatePersonInput{})
	assert.ErrorIs(t, err, domainerrors.ErrPersonNotFound)
}

func TestPersonServiceUpdatePersonRollsBackOnWriteFailure(t *testing.T) {
	f := newFixture(t)
	f.seedCase(t, "c1", "MCN-100", entity.CaseStatusActive)
	svc := f.personService()

	before := f.store.GetPerson("person-c1")

	f.tx.failErr = assert.AnError
	phone := "555-0101"
	_, err := svc.UpdatePerson(context.Background(), "person-c1", usecase.UpdatePersonInput{Phone: &phone})
	require.Error(t, err)
	f.tx.failErr = nil

	assert.Equal(t, before, f.store.GetPerson("person-c1"))
	assert.NotContains(t, f.eventTypes(), service.EventPersonUpdated)
}

func TestPersonServiceGetters(t *testing.T) {
	f := newFixture(t)
	f.seedCase(t, "c1", "MCN-100", entity.CaseStatusActive)
	svc := f.personService()
	ctx := context.Background()

	people, err := svc.ListPeople(ctx)
	require.NoError(t, err)
	require.Len(t, people, 1)

	person, err := svc.GetPerson(ctx, "person-c1")
	require.NoError(t, err)
	assert.Equal(t, "person-c1", person.ID)

	_, err = svc.GetPerson(ctx, "missing")
	assert.ErrorIs(t, err, domainerrors.ErrPersonNotFound)
}
