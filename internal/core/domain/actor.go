package domain

// SystemActorID is the pre-seeded sentinel actor recorded when no
// authenticated caller is attached to an operation. The migrations insert a
// matching users row so the audit actor column always references a real
// actor.
const SystemActorID = "system"

// Actor identifies who is performing a unit of work. Origin optionally holds
// the network origin of the request that triggered the mutation.
type Actor struct {
	ID     string
	Origin string
}

// OrSystem resolves an empty actor to the system sentinel. It never fails.
func (a Actor) OrSystem() Actor {
	if a.ID == "" {
		a.ID = SystemActorID
	}
	return a
}
