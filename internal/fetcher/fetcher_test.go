package fetcher

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigationError(t *testing.T) {
	cause := errors.New("net::ERR_TIMED_OUT")
	err := error(&NavigationError{URL: "https://pal.assembly.go.kr/napal/view.do?lgsltPaId=X", Err: cause})

	assert.Contains(t, err.Error(), "lgsltPaId=X")
	assert.ErrorIs(t, err, cause)

	var navErr *NavigationError
	require.ErrorAs(t, err, &navErr)
	assert.Equal(t, "https://pal.assembly.go.kr/napal/view.do?lgsltPaId=X", navErr.URL)
}
