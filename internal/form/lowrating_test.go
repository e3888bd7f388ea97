package form

import (
	"accioncsat/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectRating(t *testing.T) {
	t.Run("high rating is stored at once", func(t *testing.T) {
		e, s := newTestEngine(t)
		opened, err := e.SelectRating(s, "q1", "5")
		require.NoError(t, err)
		assert.False(t, opened)
		assert.Equal(t, "5", s.Record["q1"].Text())
		assert.Nil(t, s.Prompt)
	})

	for _, rating := range []string{"1", "2"} {
		t.Run("low rating "+rating+" opens prompt", func(t *testing.T) {
			e, s := newTestEngine(t)
			opened, err := e.SelectRating(s, "q3", rating)
			require.NoError(t, err)
			assert.True(t, opened)
			assert.Equal(t, "", s.Record["q3"].Text())
			require.NotNil(t, s.Prompt)
			assert.Equal(t, "q3", s.Prompt.QuestionKey)
			assert.Equal(t, rating, s.Prompt.Rating)
		})
	}

	t.Run("low rating does not overwrite committed value", func(t *testing.T) {
		e, s := newTestEngine(t)
		_, err := e.SelectRating(s, "q3", "4")
		require.NoError(t, err)
		_, err = e.SelectRating(s, "q3", "1")
		require.NoError(t, err)
		assert.Equal(t, "4", s.Record["q3"].Text())
	})

	t.Run("high rating on prompted question closes prompt", func(t *testing.T) {
		e, s := newTestEngine(t)
		_, err := e.SelectRating(s, "q3", "2")
		require.NoError(t, err)
		_, err = e.SelectRating(s, "q3", "4")
		require.NoError(t, err)
		assert.Nil(t, s.Prompt)
		assert.Equal(t, "4", s.Record["q3"].Text())

		_, err = e.SubmitJustification(s, "too late")
		assert.ErrorIs(t, err, ErrNoPendingPrompt)
		assert.Equal(t, "4", s.Record["q3"].Text())
	})

	t.Run("high rating elsewhere keeps prompt", func(t *testing.T) {
		e, s := newTestEngine(t)
		_, err := e.SelectRating(s, "q3", "2")
		require.NoError(t, err)
		_, err = e.SelectRating(s, "q1", "5")
		require.NoError(t, err)
		require.NotNil(t, s.Prompt)
		assert.Equal(t, "q3", s.Prompt.QuestionKey)
	})

	t.Run("rejects non-rating question", func(t *testing.T) {
		e, s := newTestEngine(t)
		_, err := e.SelectRating(s, "q12", "3")
		assert.ErrorIs(t, err, ErrNotRating)
	})

	t.Run("rejects value off the scale", func(t *testing.T) {
		e, s := newTestEngine(t)
		_, err := e.SelectRating(s, "q1", "7")
		assert.ErrorIs(t, err, ErrInvalidOption)
	})

	t.Run("N/A is not low", func(t *testing.T) {
		e, s := newTestEngine(t)
		opened, err := e.SelectRating(s, "q14", model.NotApplicable)
		require.NoError(t, err)
		assert.False(t, opened)
		assert.Equal(t, model.NotApplicable, s.Record["q14"].Text())
	})
}

func TestSubmitJustification(t *testing.T) {
	t.Run("commits pending rating", func(t *testing.T) {
		e, s := newTestEngine(t)
		s.Errors = []string{"q3"}
		_, err := e.SelectRating(s, "q3", "2")
		require.NoError(t, err)

		ex, err := e.SubmitJustification(s, "  slow response  ")
		require.NoError(t, err)

		assert.Equal(t, model.LowRatingExample{QuestionKey: "q3", Rating: "2", Example: "slow response"}, ex)
		assert.Equal(t, "2", s.Record["q3"].Text())
		assert.Equal(t, []model.LowRatingExample{ex}, s.Examples)
		assert.Nil(t, s.Prompt)
		assert.Empty(t, s.Errors)
	})

	t.Run("second justification replaces the first", func(t *testing.T) {
		e, s := newTestEngine(t)
		_, err := e.SelectRating(s, "q3", "2")
		require.NoError(t, err)
		_, err = e.SubmitJustification(s, "first")
		require.NoError(t, err)

		_, err = e.SelectRating(s, "q3", "1")
		require.NoError(t, err)
		_, err = e.SubmitJustification(s, "second")
		require.NoError(t, err)

		require.Len(t, s.Examples, 1)
		assert.Equal(t, model.LowRatingExample{QuestionKey: "q3", Rating: "1", Example: "second"}, s.Examples[0])
		assert.Equal(t, "1", s.Record["q3"].Text())
	})

	t.Run("blank text keeps prompt open", func(t *testing.T) {
		e, s := newTestEngine(t)
		_, err := e.SelectRating(s, "q3", "2")
		require.NoError(t, err)

		_, err = e.SubmitJustification(s, "   ")
		assert.ErrorIs(t, err, ErrEmptyJustification)
		assert.NotNil(t, s.Prompt)
		assert.Equal(t, "", s.Record["q3"].Text())
	})

	t.Run("no prompt", func(t *testing.T) {
		e, s := newTestEngine(t)
		_, err := e.SubmitJustification(s, "text")
		assert.ErrorIs(t, err, ErrNoPendingPrompt)
	})
}

func TestCancelPrompt(t *testing.T) {
	t.Run("first-time selection stays empty", func(t *testing.T) {
		e, s := newTestEngine(t)
		_, err := e.SelectRating(s, "q5", "1")
		require.NoError(t, err)

		require.NoError(t, e.CancelPrompt(s))
		assert.Nil(t, s.Prompt)
		assert.Equal(t, "", s.Record["q5"].Text())
	})

	t.Run("committed low rating is cleared", func(t *testing.T) {
		e, s := newTestEngine(t)
		_, err := e.SelectRating(s, "q5", "2")
		require.NoError(t, err)
		_, err = e.SubmitJustification(s, "missed two sprints")
		require.NoError(t, err)

		_, err = e.SelectRating(s, "q5", "1")
		require.NoError(t, err)
		require.NoError(t, e.CancelPrompt(s))

		assert.Equal(t, "", s.Record["q5"].Text())
		assert.Len(t, s.Examples, 1)
	})

	t.Run("committed high rating is kept", func(t *testing.T) {
		e, s := newTestEngine(t)
		_, err := e.SelectRating(s, "q5", "4")
		require.NoError(t, err)
		_, err = e.SelectRating(s, "q5", "2")
		require.NoError(t, err)

		require.NoError(t, e.CancelPrompt(s))
		assert.Equal(t, "4", s.Record["q5"].Text())
	})

	t.Run("no prompt", func(t *testing.T) {
		e, s := newTestEngine(t)
		assert.ErrorIs(t, e.CancelPrompt(s), ErrNoPendingPrompt)
	})

	t.Run("new prompt cancels the open one", func(t *testing.T) {
		e, s := newTestEngine(t)
		_, err := e.SelectRating(s, "q1", "2")
		require.NoError(t, err)
		_, err = e.SubmitJustification(s, "absent")
		require.NoError(t, err)
		require.NoError(t, e.EditLowRating(s, "q1"))

		_, err = e.SelectRating(s, "q2", "1")
		require.NoError(t, err)

		assert.Equal(t, "", s.Record["q1"].Text())
		require.NotNil(t, s.Prompt)
		assert.Equal(t, "q2", s.Prompt.QuestionKey)
	})
}

func TestEditLowRating(t *testing.T) {
	t.Run("reopens with committed rating", func(t *testing.T) {
		e, s := newTestEngine(t)
		_, err := e.SelectRating(s, "q8", "2")
		require.NoError(t, err)
		_, err = e.SubmitJustification(s, "reports arrive late")
		require.NoError(t, err)

		require.NoError(t, e.EditLowRating(s, "q8"))
		require.NotNil(t, s.Prompt)
		assert.Equal(t, "2", s.Prompt.Rating)
		assert.Equal(t, "reports arrive late", s.Prompt.Previous)
		assert.Equal(t, "2", s.Record["q8"].Text())

		_, err = e.SubmitJustification(s, "reports arrive a week late")
		require.NoError(t, err)
		assert.Equal(t, "2", s.Record["q8"].Text())
		require.Len(t, s.Examples, 1)
		assert.Equal(t, "reports arrive a week late", s.Examples[0].Example)
	})

	t.Run("cancel during edit reverts the rating", func(t *testing.T) {
		e, s := newTestEngine(t)
		_, err := e.SelectRating(s, "q8", "1")
		require.NoError(t, err)
		_, err = e.SubmitJustification(s, "no dashboards")
		require.NoError(t, err)

		require.NoError(t, e.EditLowRating(s, "q8"))
		require.NoError(t, e.CancelPrompt(s))
		assert.Equal(t, "", s.Record["q8"].Text())
	})

	t.Run("requires committed low rating", func(t *testing.T) {
		e, s := newTestEngine(t)
		assert.ErrorIs(t, e.EditLowRating(s, "q8"), ErrNotLowRating)

		_, err := e.SelectRating(s, "q8", "3")
		require.NoError(t, err)
		assert.ErrorIs(t, e.EditLowRating(s, "q8"), ErrNotLowRating)
	})
}
