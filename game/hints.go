package game

import (
	"fmt"
	"math"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// HintRule derives one fact about the secret. An empty result means the rule has nothing to say.
type HintRule struct {
	Name   string
	Derive func(secret int, guesses []int) string
}

// HintGenerator picks a random, not yet delivered fact from a fixed rule catalog
type HintGenerator struct {
	rules []HintRule
	rng   Random
}

// NewHintGenerator creates a generator over rules, or over DefaultHintRules when none are given
func NewHintGenerator(rng Random, rules ...HintRule) *HintGenerator {
	if rng == nil {
		rng = DefaultRandom()
	}
	if len(rules) == 0 {
		rules = DefaultHintRules()
	}
	copied := make([]HintRule, len(rules))
	copy(copied, rules)
	return &HintGenerator{rules: copied, rng: rng}
}

// Next returns the first qualifying hint in a freshly shuffled rule order.
// It returns false once every rule is empty or already in given.
func (g *HintGenerator) Next(secret int, guesses []int, given []string) (string, bool) {
	seen := make(map[string]struct{}, len(given))
	for _, h := range given {
		seen[h] = struct{}{}
	}

	for _, idx := range g.rng.Perm(len(g.rules)) {
		text := g.derive(g.rules[idx], secret, guesses)
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		return text, true
	}
	return "", false
}

func (g *HintGenerator) derive(rule HintRule, secret int, guesses []int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(log.Fields{
				"rule":  rule.Name,
				"panic": r,
			}).Debug("Hint rule panicked, skipping")
			text = ""
		}
	}()
	return rule.Derive(secret, guesses)
}

// Rule catalog constants
const (
	thaiProvinceCount     = 77
	honeKrasaeEpisodes    = 2017
	earthOrbitDays        = 365
	piDecimalDigits       = "1459"
	singleDigitTensNotice = "The number has only one digit, so there is no tens digit."
)

var distanceBands = []int{5, 10, 25, 50, 100, 250, 500, 1000}

// DefaultHintRules returns the built-in rule catalog in its canonical order
func DefaultHintRules() []HintRule {
	return []HintRule{
		{Name: "parity", Derive: hintParity},
		{Name: "digit_sum", Derive: hintDigitSum},
		{Name: "first_last_digit", Derive: hintFirstLastDigit},
		{Name: "prime_composite", Derive: hintPrimeComposite},
		{Name: "last_guess_direction", Derive: hintLastGuessDirection},
		{Name: "last_guess_distance", Derive: hintLastGuessDistance},
		{Name: "thai_provinces", Derive: hintThaiProvinces},
		{Name: "fibonacci", Derive: hintFibonacci},
		{Name: "hone_krasae", Derive: hintHoneKrasae},
		{Name: "pi_digits", Derive: hintPiDigits},
		{Name: "earth_orbit", Derive: hintEarthOrbit},
		{Name: "digit_product", Derive: hintDigitProduct},
		{Name: "tens_units_difference", Derive: hintTensUnitsDifference},
		{Name: "palindrome", Derive: hintPalindrome},
		{Name: "digit_sum_parity", Derive: hintDigitSumParity},
		{Name: "repeated_digits", Derive: hintRepeatedDigits},
		{Name: "perfect_power", Derive: hintPerfectPower},
		{Name: "perfect_square", Derive: hintPerfectSquare},
		{Name: "power_of_two", Derive: hintPowerOfTwo},
	}
}

func hintParity(n int, _ []int) string {
	if n%2 == 0 {
		return "The number is even."
	}
	return "The number is odd."
}

func hintDigitSum(n int, _ []int) string {
	return fmt.Sprintf("The sum of its digits is %d.", digitSum(n))
}

func hintFirstLastDigit(n int, _ []int) string {
	s := digits(n)
	return fmt.Sprintf("The first digit is %c and the last digit is %c.", s[0], s[len(s)-1])
}

func hintPrimeComposite(n int, _ []int) string {
	if n < 2 {
		return "The number is not prime."
	}
	if d := smallestDivisor(n); d != n {
		return fmt.Sprintf("The number is composite (divisible by %d).", d)
	}
	return "The number is prime."
}

func hintLastGuessDirection(n int, guesses []int) string {
	if len(guesses) == 0 {
		return ""
	}
	last := guesses[len(guesses)-1]
	switch {
	case last < n:
		return fmt.Sprintf("The number is higher than your last guess of %d.", last)
	case last > n:
		return fmt.Sprintf("The number is lower than your last guess of %d.", last)
	default:
		return ""
	}
}

func hintLastGuessDistance(n int, guesses []int) string {
	if len(guesses) == 0 {
		return ""
	}
	last := guesses[len(guesses)-1]
	diff := abs(n - last)
	if diff == 0 {
		return ""
	}
	for _, band := range distanceBands {
		if diff <= band {
			return fmt.Sprintf("Your last guess of %d is within %d of the number.", last, band)
		}
	}
	return fmt.Sprintf("Your last guess of %d is more than %d away from the number.", last, distanceBands[len(distanceBands)-1])
}

func hintThaiProvinces(n int, _ []int) string {
	if v := abs(n); v >= 1 && v <= thaiProvinceCount {
		return fmt.Sprintf("The number is within the count of Thailand's provinces (%d).", thaiProvinceCount)
	}
	return fmt.Sprintf("The number is outside the count of Thailand's provinces (%d).", thaiProvinceCount)
}

func hintFibonacci(n int, _ []int) string {
	v := abs(n)
	a, b := 0, 1
	for a < v {
		a, b = b, a+b
	}
	if a == v {
		return "The number is in the Fibonacci sequence."
	}
	return "The number is not in the Fibonacci sequence."
}

func hintHoneKrasae(n int, _ []int) string {
	if v := abs(n); v >= 1 && v <= honeKrasaeEpisodes {
		return fmt.Sprintf("The number is within the episode count of the Hone Krasae show (%d as of 12 September 2025).", honeKrasaeEpisodes)
	}
	return fmt.Sprintf("The number is outside the episode count of the Hone Krasae show (%d as of 12 September 2025).", honeKrasaeEpisodes)
}

func hintPiDigits(n int, _ []int) string {
	present := make(map[rune]bool)
	for _, d := range digits(n) {
		present[d] = true
	}
	common := 0
	for _, d := range piDecimalDigits {
		if present[d] {
			common++
		}
	}
	return fmt.Sprintf("The number contains %d of the digits {1,4,5,9} that appear in the first five decimals of pi (3.14159).", common)
}

func hintEarthOrbit(n int, _ []int) string {
	if v := abs(n); v >= 1 && v <= earthOrbitDays {
		return fmt.Sprintf("The number is within the days Earth takes to orbit the sun (%d).", earthOrbitDays)
	}
	return fmt.Sprintf("The number is outside the days Earth takes to orbit the sun (%d).", earthOrbitDays)
}

func hintDigitProduct(n int, _ []int) string {
	product, found := 1, false
	for _, d := range digits(n) {
		if d == '0' {
			continue
		}
		product *= int(d - '0')
		found = true
	}
	if !found {
		return "The number has no non-zero digits."
	}
	return fmt.Sprintf("The product of its non-zero digits is %d.", product)
}

func hintTensUnitsDifference(n int, _ []int) string {
	v := abs(n)
	if v < 10 {
		return singleDigitTensNotice
	}
	units := v % 10
	tens := (v / 10) % 10
	return fmt.Sprintf("The difference between its tens and units digits is %d.", abs(tens-units))
}

func hintPalindrome(n int, _ []int) string {
	s := digits(n)
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		if s[i] != s[j] {
			return "The number is not a palindrome."
		}
	}
	return "The number is a palindrome (it reads the same in both directions)."
}

func hintDigitSumParity(n int, _ []int) string {
	if digitSum(n)%2 == 0 {
		return "The sum of its digits is even."
	}
	return "The sum of its digits is odd."
}

func hintRepeatedDigits(n int, _ []int) string {
	seen := make(map[rune]bool)
	for _, d := range digits(n) {
		if seen[d] {
			return "The number repeats at least one digit."
		}
		seen[d] = true
	}
	return "The number has no repeated digits."
}

func hintPerfectPower(n int, _ []int) string {
	v := abs(n)
	if v == 1 {
		return "The number is a perfect power (1^k)."
	}
	if v < 1 {
		return "The number is not a perfect power."
	}
	maxPower := int(math.Log2(float64(v))) + 1
	for power := 2; power <= maxPower; power++ {
		if root, ok := exactRoot(v, power); ok && root > 1 {
			return fmt.Sprintf("The number is a perfect power: %d^%d.", root, power)
		}
	}
	return "The number is not a perfect power."
}

func hintPerfectSquare(n int, _ []int) string {
	if n >= 0 {
		if _, ok := exactRoot(n, 2); ok {
			return "The number is a perfect square (the square of an integer)."
		}
	}
	return "The number is not a perfect square."
}

func hintPowerOfTwo(n int, _ []int) string {
	if n > 0 && n&(n-1) == 0 {
		return "The number has no odd divisor other than 1 (it is a power of 2)."
	}
	return "The number has an odd divisor other than 1."
}

func digits(n int) string {
	return strconv.Itoa(abs(n))
}

func digitSum(n int) int {
	sum := 0
	for _, d := range digits(n) {
		sum += int(d - '0')
	}
	return sum
}

func smallestDivisor(n int) int {
	if n%2 == 0 {
		return 2
	}
	for p := 3; p*p <= n; p += 2 {
		if n%p == 0 {
			return p
		}
	}
	return n
}

// exactRoot returns r with r^k == n, checking neighbours of the float estimate
func exactRoot(n, k int) (int, bool) {
	if n == 0 {
		return 0, true
	}
	guess := int(math.Round(math.Pow(float64(n), 1/float64(k))))
	for r := guess - 1; r <= guess+1; r++ {
		if r < 0 {
			continue
		}
		if p, ok := intPow(r, k, n); ok && p == n {
			return r, true
		}
	}
	return 0, false
}

// intPow computes base^exp, giving up as soon as the result exceeds limit
func intPow(base, exp, limit int) (int, bool) {
	result := 1
	for i := 0; i < exp; i++ {
		result *= base
		if result > limit {
			return result, false
		}
	}
	return result, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
