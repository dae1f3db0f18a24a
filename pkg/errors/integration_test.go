package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wwErrors "github.com/ezoic/wattwise/pkg/errors"
)

func TestErrorWrappingCompatibility(t *testing.T) {
	originalErr := wwErrors.NewNotFittedError("TestModel", "Predict")
	wrappedErr := fmt.Errorf("pipeline step failed: %w", originalErr)

	assert.True(t, errors.Is(wrappedErr, originalErr))
	assert.True(t, errors.Is(wrappedErr, wwErrors.ErrNotFitted))

	var notFittedErr *wwErrors.NotFittedError
	require.True(t, errors.As(wrappedErr, &notFittedErr))
	assert.Equal(t, "TestModel", notFittedErr.ModelName)
}

func TestCombinedErrorTypes(t *testing.T) {
	stdErr := fmt.Errorf("standard error")
	customErr := wwErrors.NewModelError("TestOp", "test failure", stdErr)
	wrappedErr := fmt.Errorf("operation context: %w", customErr)

	assert.True(t, errors.Is(wrappedErr, stdErr))

	var modelErr *wwErrors.ModelError
	require.True(t, errors.As(wrappedErr, &modelErr))
	assert.Equal(t, stdErr, modelErr.Unwrap())
}

func TestSentinelErrors(t *testing.T) {
	err := wwErrors.NewModelError("TestOp", "empty data", wwErrors.ErrEmptyData)
	assert.True(t, errors.Is(err, wwErrors.ErrEmptyData))

	wrappedErr := fmt.Errorf("preprocessing failed: %w", err)
	assert.True(t, errors.Is(wrappedErr, wwErrors.ErrEmptyData))
	assert.False(t, errors.Is(wrappedErr, wwErrors.ErrSingularMatrix))
}

func TestWrapKeepsCause(t *testing.T) {
	assert.Nil(t, wwErrors.Wrap(nil, "ignored"))

	err := wwErrors.Wrapf(wwErrors.ErrInsufficientData, "split of %d rows", 3)
	assert.True(t, errors.Is(err, wwErrors.ErrInsufficientData))
	assert.Contains(t, err.Error(), "split of 3 rows")

	hinted := wwErrors.WithHint(err, "generate at least one day of data")
	assert.Equal(t, []string{"generate at least one day of data"}, wwErrors.GetAllHints(hinted))
}

func TestRecover(t *testing.T) {
	run := func(value interface{}) (err error) {
		defer wwErrors.Recover(&err, "Test.Run")
		panic(value)
	}

	err := run("index out of range")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Test.Run")
	assert.Contains(t, err.Error(), "index out of range")

	cause := errors.New("boom")
	err = run(cause)
	assert.True(t, errors.Is(err, cause))

	var modelErr *wwErrors.ModelError
	assert.True(t, errors.As(err, &modelErr))

	noPanic := func() (err error) {
		defer wwErrors.Recover(&err, "Test.NoPanic")
		return nil
	}
	assert.NoError(t, noPanic())
}
