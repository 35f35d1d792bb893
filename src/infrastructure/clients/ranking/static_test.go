package ranking

import (
	"os"
	"path/filepath"
	"testing"

	domainEmergency "pet-emergency-api/src/domain/emergency"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticRankingReturnsFileOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hospitals.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
hospitals:
  - id: 1
    name: Sakura Animal Hospital
    whatsapp-number: "+8190111"
    email-address: er@sakura.example
  - id: 2
    name: Aoba Pet Clinic
    line-id: aoba-er
`), 0o600))

	service, err := NewStaticRanking(path)
	require.NoError(t, err)

	candidates, err := service.RankCandidates(&domainEmergency.EmergencyRequest{ID: 1})
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Sakura Animal Hospital", candidates[0].Name)
	assert.Equal(t, "+8190111", candidates[0].Recipient(domainEmergency.ChannelWhatsApp))
	assert.Equal(t, "er@sakura.example", candidates[0].Recipient(domainEmergency.ChannelEmail))
	assert.Equal(t, "", candidates[0].Recipient(domainEmergency.ChannelLine))
	assert.Equal(t, "aoba-er", candidates[1].Recipient(domainEmergency.ChannelLine))
}

func TestStaticRankingMissingFile(t *testing.T) {
	_, err := NewStaticRanking(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}
