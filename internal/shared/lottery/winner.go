package lottery

// DefaultWinningNumber é o número sorteado quando nada é configurado
const DefaultWinningNumber = 7574

// Predicate decide se uma aposta foi ganhadora
type Predicate func(Bet) bool

// WinningNumber devolve a regra do sorteio: ganha a aposta cujo número é igual a n
func WinningNumber(n int) Predicate {
	return func(b Bet) bool { return b.Number == n }
}
