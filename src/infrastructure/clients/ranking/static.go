package ranking

import (
	"fmt"
	"os"

	domainEmergency "pet-emergency-api/src/domain/emergency"
	"pet-emergency-api/src/domain/hospital"

	yaml "gopkg.in/yaml.v2"
)

// StaticRanking serves a fixed candidate list loaded from a YAML file. Used
// when no ranking service URL is configured, typically local development.
type StaticRanking struct {
	candidates []hospital.Candidate
}

type staticFile struct {
	Hospitals []struct {
		ID             int    `yaml:"id"`
		Name           string `yaml:"name"`
		WhatsAppNumber string `yaml:"whatsapp-number"`
		EmailAddress   string `yaml:"email-address"`
		LineID         string `yaml:"line-id"`
	} `yaml:"hospitals"`
}

func NewStaticRanking(path string) (hospital.RankingService, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hospital list %s: %w", path, err)
	}

	var file staticFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing hospital list %s: %w", path, err)
	}

	s := &StaticRanking{}
	for _, h := range file.Hospitals {
		s.candidates = append(s.candidates, hospital.Candidate{
			ID:             h.ID,
			Name:           h.Name,
			WhatsAppNumber: h.WhatsAppNumber,
			EmailAddress:   h.EmailAddress,
			LineID:         h.LineID,
		})
	}
	return s, nil
}

// RankCandidates returns the configured list in file order
func (s *StaticRanking) RankCandidates(_ *domainEmergency.EmergencyRequest) ([]hospital.Candidate, error) {
	out := make([]hospital.Candidate, len(s.candidates))
	copy(out, s.candidates)
	return out, nil
}
