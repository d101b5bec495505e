package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainByID(t *testing.T) {
	d := DomainByID("backend")
	require.NotNil(t, d)
	assert.Equal(t, "Backend Development", d.Name)
	assert.NotEmpty(t, d.TechStack)

	assert.Nil(t, DomainByID("astrology"))
	assert.Nil(t, DomainByID(""))
}

func TestDomainIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool, len(Domains))
	for _, d := range Domains {
		assert.False(t, seen[d.ID], "duplicate domain id %q", d.ID)
		seen[d.ID] = true
	}
}

func TestRandomCover(t *testing.T) {
	for i := 0; i < 50; i++ {
		cover := RandomCover()
		assert.True(t, strings.HasPrefix(cover, "/covers/"), "unexpected cover %q", cover)
	}
}
