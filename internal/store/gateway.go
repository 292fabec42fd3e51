// Package store provides the persistence gateway and the chat history store.
package store

import "context"

// Domain keys, one per independently persisted state slice.
const (
	DomainSchedules   = "schedules"
	DomainFinance     = "finance"
	DomainMental      = "mental"
	DomainDevelopment = "development"
	DomainWork        = "work"
	DomainEquipment   = "equipment"
	DomainWidgets     = "widgets"
	DomainProfile     = "user-profile"
)

// Domains lists every key in hydration order.
var Domains = []string{
	DomainSchedules,
	DomainFinance,
	DomainMental,
	DomainDevelopment,
	DomainWork,
	DomainEquipment,
	DomainWidgets,
	DomainProfile,
}

// Gateway is the boundary to the external storage service.
//
// Save is fire-and-forget: failures are logged by the implementation and
// never surfaced to the caller, so a failed persist can leave memory and
// disk divergent until the next successful save. Updates delivers the key
// of a domain whose backing document was changed by another process.
type Gateway interface {
	Load(ctx context.Context, domain string) ([]byte, error)
	Save(domain string, doc []byte)
	Updates() <-chan string
	Close() error
}

// DefaultDoc returns the documented default shape for a domain that has
// nothing stored yet.
func DefaultDoc(domain string) []byte {
	switch domain {
	case DomainMental:
		return []byte(`{"logs":[],"currentMood":"","score":0,"todayAdvice":""}`)
	case DomainDevelopment:
		return []byte(`{"books":[]}`)
	case DomainFinance:
		return []byte(`{"totalAssets":0,"changePct":0}`)
	case DomainWork, DomainProfile:
		return []byte(`{}`)
	default:
		return []byte(`[]`)
	}
}
