package topics

const (
	// Apostas
	BetsStored = "lottery_bets_stored"

	// Agências
	AgencyCompleted = "lottery_agency_completed"

	// Sorteio
	WinnersServed = "lottery_winners_served"

	// Canal Redis Pub/Sub com o progresso do sorteio
	ProgressChannel = "lottery_progress"
)
