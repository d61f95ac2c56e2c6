package names

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael", "Linda",
	"David", "Elizabeth", "William", "Barbara", "Richard", "Susan", "Joseph", "Jessica",
	"Thomas", "Sarah", "Charles", "Karen", "Christopher", "Lisa", "Daniel", "Nancy",
	"Matthew", "Betty", "Anthony", "Margaret", "Mark", "Sandra", "Donald", "Ashley",
	"Steven", "Kimberly", "Paul", "Emily", "Andrew", "Donna", "Joshua", "Michelle",
	"Kenneth", "Carol", "Kevin", "Amanda", "Brian", "Dorothy", "George", "Melissa",
	"Timothy", "Deborah", "Ronald", "Stephanie", "Edward", "Rebecca", "Jason", "Sharon",
	"Ava", "Noah", "Lena", "Mateo", "Yuki", "Priya", "Omar", "Ingrid",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas",
	"Taylor", "Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson", "White",
	"Harris", "Sanchez", "Clark", "Ramirez", "Lewis", "Robinson", "Walker", "Young",
	"Allen", "King", "Wright", "Scott", "Torres", "Nguyen", "Hill", "Flores",
	"Green", "Adams", "Nelson", "Baker", "Hall", "Rivera", "Campbell", "Mitchell",
	"Li", "Diaz", "Ortiz", "Tanaka", "Patel", "Haddad", "Larsen", "Kowalski",
}

// Catalog picks names from built-in lists. Safe for concurrent use.
type Catalog struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewCatalog returns a catalog. A non-zero seed makes the sequence reproducible.
func NewCatalog(seed uint64) *Catalog {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Catalog{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (c *Catalog) Name(_ context.Context) (Name, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Name{
		First: firstNames[c.rng.IntN(len(firstNames))],
		Last:  lastNames[c.rng.IntN(len(lastNames))],
	}, nil
}
