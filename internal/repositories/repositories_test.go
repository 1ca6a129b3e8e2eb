package repositories_test

import (
	"fmt"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gerador/internal/database"
	"gerador/internal/logger"
	"gerador/internal/models"
	"gerador/internal/repositories"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

type repoSet struct {
	forms repositories.FormRepository
	users repositories.UserRepository
	logs  repositories.ProcessingLogRepository
}

// backends returns a GORM (in-memory SQLite) and an in-memory implementation
// of every repository so both satisfy the same contract.
func backends(t *testing.T) map[string]repoSet {
	t.Helper()
	db, err := database.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	return map[string]repoSet{
		"gorm": {
			forms: repositories.NewGORMFormRepository(db, time.Second),
			users: repositories.NewGORMUserRepository(db, time.Second),
			logs:  repositories.NewGORMProcessingLogRepository(db, time.Second),
		},
		"memory": {
			forms: repositories.NewMockFormRepository(),
			users: repositories.NewMockUserRepository(),
			logs:  repositories.NewMockProcessingLogRepository(),
		},
	}
}

func newForm(owner uint, public bool) *models.Form {
	settings := models.DefaultFormSettings()
	settings.IsPublic = public
	return &models.Form{
		Title:    "Survey",
		Fields:   []models.FormField{{ID: "name", Type: models.FieldText, Label: "Name", Required: true}},
		Settings: settings,
		OwnerID:  owner,
		IsActive: true,
	}
}

func uintPtr(v uint) *uint { return &v }

func TestFormRepository_CRUD(t *testing.T) {
	for name, r := range backends(t) {
		t.Run(name, func(t *testing.T) {
			form := newForm(1, false)
			require.NoError(t, r.forms.Create(form))
			require.NotZero(t, form.ID)

			got, err := r.forms.GetForm(form.ID)
			require.NoError(t, err)
			assert.Equal(t, "Survey", got.Title)
			require.Len(t, got.Fields, 1)
			assert.Equal(t, "name", got.Fields[0].ID)
			assert.True(t, got.Settings.OneResponsePerUser)

			got.Title = "Renamed"
			got.Settings.IsPublic = true
			got.IsActive = false
			require.NoError(t, r.forms.Update(got))

			updated, err := r.forms.GetForm(form.ID)
			require.NoError(t, err)
			assert.Equal(t, "Renamed", updated.Title)
			assert.True(t, updated.Settings.IsPublic)
			assert.False(t, updated.IsActive)

			_, err = r.forms.GetForm(9999)
			assert.ErrorIs(t, err, repositories.ErrFormNotFound)
			assert.ErrorIs(t, r.forms.Update(&models.Form{ID: 9999}), repositories.ErrFormNotFound)
			assert.ErrorIs(t, r.forms.Delete(9999), repositories.ErrFormNotFound)
		})
	}
}

func TestFormRepository_Listing(t *testing.T) {
	for name, r := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, r.forms.Create(newForm(1, false)))
			require.NoError(t, r.forms.Create(newForm(1, true)))
			require.NoError(t, r.forms.Create(newForm(2, true)))
			require.NoError(t, r.forms.Create(newForm(2, false)))

			anon, err := r.forms.ListAccessible(nil, 0, 0)
			require.NoError(t, err)
			assert.Len(t, anon, 2)

			mine, err := r.forms.ListAccessible(uintPtr(1), 0, 0)
			require.NoError(t, err)
			assert.Len(t, mine, 3)

			owned, err := r.forms.ListByOwner(2, 0, 0)
			require.NoError(t, err)
			assert.Len(t, owned, 2)

			paged, err := r.forms.ListAccessible(uintPtr(1), 1, 1)
			require.NoError(t, err)
			require.Len(t, paged, 1)
			assert.Equal(t, mine[1].ID, paged[0].ID)
		})
	}
}

func TestFormRepository_Responses(t *testing.T) {
	for name, r := range backends(t) {
		t.Run(name, func(t *testing.T) {
			form := newForm(1, true)
			require.NoError(t, r.forms.Create(form))

			found, err := r.forms.FindResponse(form.ID, 7)
			require.NoError(t, err)
			assert.Nil(t, found)

			first := &models.FormResponse{
				FormID:             form.ID,
				RespondentID:       uintPtr(7),
				SingleRespondentID: uintPtr(7),
				Answers:            models.Answers{"name": models.TextValue("Ann")},
				Metadata:           map[string]any{"source": "test"},
			}
			saved, err := r.forms.SaveResponse(first)
			require.NoError(t, err)
			assert.NotZero(t, saved.ID)

			found, err = r.forms.FindResponse(form.ID, 7)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, models.TextValue("Ann"), found.Answers["name"])

			_, err = r.forms.SaveResponse(&models.FormResponse{FormID: form.ID, RespondentID: uintPtr(7), SingleRespondentID: uintPtr(7), Answers: models.Answers{}})
			assert.ErrorIs(t, err, repositories.ErrResponseExists)

			// Without the single-respondent key the same user may answer again.
			_, err = r.forms.SaveResponse(&models.FormResponse{FormID: form.ID, RespondentID: uintPtr(7), Answers: models.Answers{}})
			assert.NoError(t, err)

			for i := 0; i < 2; i++ {
				_, err = r.forms.SaveResponse(&models.FormResponse{FormID: form.ID, Answers: models.Answers{}})
				assert.NoError(t, err)
			}

			responses, err := r.forms.ListResponses(form.ID, 0, 0)
			require.NoError(t, err)
			assert.Len(t, responses, 4)
			assert.Equal(t, saved.ID, responses[0].ID)

			require.NoError(t, r.forms.Delete(form.ID))
			responses, err = r.forms.ListResponses(form.ID, 0, 0)
			require.NoError(t, err)
			assert.Empty(t, responses)
		})
	}
}

func TestMockFormRepository_ConcurrentSave(t *testing.T) {
	repo := repositories.NewMockFormRepository()
	form := newForm(1, true)
	require.NoError(t, repo.Create(form))

	var wg sync.WaitGroup
	var mu sync.Mutex
	saved := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.SaveResponse(&models.FormResponse{FormID: form.ID, RespondentID: uintPtr(3), SingleRespondentID: uintPtr(3), Answers: models.Answers{}})
			if err == nil {
				mu.Lock()
				saved++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, saved)
}

func TestUserRepository(t *testing.T) {
	for name, r := range backends(t) {
		t.Run(name, func(t *testing.T) {
			user := &models.User{Email: "ann@example.com", FullName: "Ann", HashedPassword: "x", IsActive: true}
			require.NoError(t, r.users.Create(user))
			require.NotZero(t, user.ID)

			err := r.users.Create(&models.User{Email: "ann@example.com", HashedPassword: "y"})
			assert.ErrorIs(t, err, repositories.ErrEmailExists)

			byEmail, err := r.users.GetByEmail("ann@example.com")
			require.NoError(t, err)
			assert.Equal(t, user.ID, byEmail.ID)

			_, err = r.users.GetByEmail("nobody@example.com")
			assert.ErrorIs(t, err, repositories.ErrUserNotFound)

			reason := "spam"
			byEmail.IsActive = false
			byEmail.BlockedReason = &reason
			require.NoError(t, r.users.Update(byEmail))

			byID, err := r.users.GetByID(user.ID)
			require.NoError(t, err)
			assert.False(t, byID.IsActive)
			require.NotNil(t, byID.BlockedReason)
			assert.Equal(t, "spam", *byID.BlockedReason)

			require.NoError(t, r.users.Create(&models.User{Email: "bob@example.com", HashedPassword: "z", IsActive: true}))
			all, err := r.users.GetAll(0, 10)
			require.NoError(t, err)
			assert.Len(t, all, 2)

			require.NoError(t, r.users.Delete(user.ID))
			_, err = r.users.GetByID(user.ID)
			assert.ErrorIs(t, err, repositories.ErrUserNotFound)
			assert.ErrorIs(t, r.users.Delete(user.ID), repositories.ErrUserNotFound)
		})
	}
}

func TestProcessingLogRepository(t *testing.T) {
	for name, r := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, userID := range []uint{1, 1, 2} {
				require.NoError(t, r.logs.Create(&models.ProcessingLog{UserID: userID, Action: "form.create", Status: models.LogStatusSuccess}))
			}

			mine, err := r.logs.ListByUser(1)
			require.NoError(t, err)
			assert.Len(t, mine, 2)

			all, err := r.logs.ListAll(0, 0)
			require.NoError(t, err)
			assert.Len(t, all, 3)

			require.NoError(t, r.logs.DeleteByUser(1))
			all, err = r.logs.ListAll(0, 0)
			require.NoError(t, err)
			require.Len(t, all, 1)
			assert.Equal(t, uint(2), all[0].UserID)
		})
	}
}
