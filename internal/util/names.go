// Package util generates realistic demo records for the intake flows.
package util

import (
	"math/rand/v2"
	"time"
)

var defaultRNG = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))

// EnglishNameProbability is the probability (0.0-1.0) of picking an English
// given name instead of a Kinyarwanda one.
const EnglishNameProbability = 0.30

var (
	MaleFirstNames = []string{
		"Jean", "Eric", "Emmanuel", "Olivier", "Patrick", "Claude", "Innocent",
		"Jean Paul", "Didier", "Fabrice", "Gilbert", "Aimable", "Theogene",
		"Kwizera", "Mugisha", "Ishimwe", "Habimana", "Niyonzima", "Hakizimana",
		"Ndayisaba", "Bizimana", "Nshuti", "Gatete", "Rukundo", "Manzi",
	}

	FemaleFirstNames = []string{
		"Marie", "Claudine", "Josiane", "Diane", "Alice", "Esperance", "Vestine",
		"Jeanne", "Chantal", "Clarisse", "Solange", "Immaculee", "Alphonsine",
		"Uwase", "Ingabire", "Umutoni", "Mukamana", "Uwimana", "Keza",
		"Ineza", "Umurerwa", "Mutesi", "Gasana", "Teta", "Iradukunda",
	}

	EnglishMaleFirstNames = []string{
		"James", "John", "Robert", "Michael", "David", "Daniel", "Samuel",
		"Joseph", "Peter", "Paul", "Andrew", "Mark", "Steven", "Brian",
	}

	EnglishFemaleFirstNames = []string{
		"Mary", "Grace", "Sarah", "Ruth", "Esther", "Rebecca", "Hannah",
		"Elizabeth", "Joyce", "Janet", "Rachel", "Naomi", "Lydia", "Judith",
	}

	LastNames = []string{
		"Mugabo", "Uwimana", "Niyonsenga", "Habyarimana", "Nsengimana", "Mukeshimana",
		"Ndahiro", "Kayitesi", "Murenzi", "Nkurunziza", "Mukamurenzi", "Byiringiro",
		"Twagirayezu", "Nyirahabimana", "Munyaneza", "Uwase", "Hategekimana", "Karangwa",
		"Niyigena", "Mutabazi", "Rwigema", "Gakwaya", "Ntwari", "Kamanzi",
	}
)

// GeneratePatientName returns a first and last name for gender ("male",
// "female" or "other"; anything but "male" draws from the female lists).
// If rng is nil, uses the shared default RNG.
func GeneratePatientName(gender string, rng *rand.Rand) (first, last string) {
	if rng == nil {
		rng = defaultRNG
	}

	english := rng.Float64() < EnglishNameProbability

	pool := FemaleFirstNames
	switch {
	case gender == "male" && english:
		pool = EnglishMaleFirstNames
	case gender == "male":
		pool = MaleFirstNames
	case english:
		pool = EnglishFemaleFirstNames
	}

	return pool[rng.IntN(len(pool))], LastNames[rng.IntN(len(LastNames))]
}
