package intelligence

import (
	"github.com/alexanderramin/mandalart/internal/domain"
	"github.com/alexanderramin/mandalart/internal/llm"
)

// Services bundles every suggestion service for one locale.
type Services struct {
	Archetype ArchetypeService
	Interview InterviewService
	Discovery DiscoveryService
	Pillars   PillarService
	Actions   ActionService
	Blessing  BlessingService
}

// NewServices builds all suggestion services over one client.
func NewServices(client llm.LLMClient, locale domain.Locale) Services {
	return Services{
		Archetype: NewArchetypeService(client, locale),
		Interview: NewInterviewService(client, locale),
		Discovery: NewDiscoveryService(client, locale),
		Pillars:   NewPillarService(client, locale),
		Actions:   NewActionService(client, locale),
		Blessing:  NewBlessingService(client, locale),
	}
}
