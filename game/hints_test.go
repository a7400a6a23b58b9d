package game

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHintRules_Derive(t *testing.T) {
	tests := []struct {
		rule     func(int, []int) string
		secret   int
		guesses  []int
		expected string
	}{
		{hintParity, 42, nil, "The number is even."},
		{hintParity, 7, nil, "The number is odd."},
		{hintDigitSum, 4821, nil, "The sum of its digits is 15."},
		{hintFirstLastDigit, 4821, nil, "The first digit is 4 and the last digit is 1."},
		{hintFirstLastDigit, 7, nil, "The first digit is 7 and the last digit is 7."},
		{hintPrimeComposite, 1, nil, "The number is not prime."},
		{hintPrimeComposite, 2, nil, "The number is prime."},
		{hintPrimeComposite, 97, nil, "The number is prime."},
		{hintPrimeComposite, 91, nil, "The number is composite (divisible by 7)."},
		{hintPrimeComposite, 42, nil, "The number is composite (divisible by 2)."},
		{hintLastGuessDirection, 42, []int{10, 50}, "The number is lower than your last guess of 50."},
		{hintLastGuessDirection, 42, []int{30}, "The number is higher than your last guess of 30."},
		{hintLastGuessDirection, 42, nil, ""},
		{hintLastGuessDistance, 42, []int{50}, "Your last guess of 50 is within 10 of the number."},
		{hintLastGuessDistance, 42, []int{40}, "Your last guess of 40 is within 5 of the number."},
		{hintLastGuessDistance, 5000, []int{1}, "Your last guess of 1 is more than 1000 away from the number."},
		{hintLastGuessDistance, 42, nil, ""},
		{hintThaiProvinces, 77, nil, "The number is within the count of Thailand's provinces (77)."},
		{hintThaiProvinces, 78, nil, "The number is outside the count of Thailand's provinces (77)."},
		{hintFibonacci, 89, nil, "The number is in the Fibonacci sequence."},
		{hintFibonacci, 1, nil, "The number is in the Fibonacci sequence."},
		{hintFibonacci, 90, nil, "The number is not in the Fibonacci sequence."},
		{hintHoneKrasae, 2017, nil, "The number is within the episode count of the Hone Krasae show (2017 as of 12 September 2025)."},
		{hintHoneKrasae, 2018, nil, "The number is outside the episode count of the Hone Krasae show (2017 as of 12 September 2025)."},
		{hintPiDigits, 1459, nil, "The number contains 4 of the digits {1,4,5,9} that appear in the first five decimals of pi (3.14159)."},
		{hintPiDigits, 1111, nil, "The number contains 1 of the digits {1,4,5,9} that appear in the first five decimals of pi (3.14159)."},
		{hintPiDigits, 2, nil, "The number contains 0 of the digits {1,4,5,9} that appear in the first five decimals of pi (3.14159)."},
		{hintEarthOrbit, 365, nil, "The number is within the days Earth takes to orbit the sun (365)."},
		{hintEarthOrbit, 366, nil, "The number is outside the days Earth takes to orbit the sun (365)."},
		{hintDigitProduct, 1024, nil, "The product of its non-zero digits is 8."},
		{hintTensUnitsDifference, 7, nil, "The number has only one digit, so there is no tens digit."},
		{hintTensUnitsDifference, 1029, nil, "The difference between its tens and units digits is 7."},
		{hintPalindrome, 1221, nil, "The number is a palindrome (it reads the same in both directions)."},
		{hintPalindrome, 1223, nil, "The number is not a palindrome."},
		{hintDigitSumParity, 11, nil, "The sum of its digits is even."},
		{hintDigitSumParity, 12, nil, "The sum of its digits is odd."},
		{hintRepeatedDigits, 1231, nil, "The number repeats at least one digit."},
		{hintRepeatedDigits, 123, nil, "The number has no repeated digits."},
		{hintPerfectPower, 1, nil, "The number is a perfect power (1^k)."},
		{hintPerfectPower, 64, nil, "The number is a perfect power: 8^2."},
		{hintPerfectPower, 27, nil, "The number is a perfect power: 3^3."},
		{hintPerfectPower, 42, nil, "The number is not a perfect power."},
		{hintPerfectSquare, 81, nil, "The number is a perfect square (the square of an integer)."},
		{hintPerfectSquare, 82, nil, "The number is not a perfect square."},
		{hintPowerOfTwo, 64, nil, "The number has no odd divisor other than 1 (it is a power of 2)."},
		{hintPowerOfTwo, 96, nil, "The number has an odd divisor other than 1."},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.rule(tt.secret, tt.guesses))
		})
	}
}

func TestHintGenerator_Next_NeverRepeats(t *testing.T) {
	gen := NewHintGenerator(rand.New(rand.NewPCG(1, 2)))
	guesses := []int{50}

	var given []string
	for {
		text, ok := gen.Next(42, guesses, given)
		if !ok {
			break
		}
		assert.NotContains(t, given, text)
		given = append(given, text)
	}

	// Every rule yields exactly one distinct text for a fixed secret and history
	assert.Len(t, given, len(DefaultHintRules()))
}

func TestHintGenerator_Next_ExhaustedReturnsFalse(t *testing.T) {
	gen := NewHintGenerator(fixedRandom{}, HintRule{Name: "parity", Derive: hintParity})

	text, ok := gen.Next(42, nil, []string{"The number is even."})
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestHintGenerator_Next_SkipsPanickingAndEmptyRules(t *testing.T) {
	gen := NewHintGenerator(fixedRandom{},
		HintRule{Name: "boom", Derive: func(int, []int) string { panic("bad input") }},
		HintRule{Name: "empty", Derive: func(int, []int) string { return "" }},
		HintRule{Name: "index", Derive: func(_ int, guesses []int) string { return string(rune('0' + guesses[3])) }},
		HintRule{Name: "parity", Derive: hintParity},
	)

	text, ok := gen.Next(42, nil, nil)
	require.True(t, ok)
	assert.Equal(t, "The number is even.", text)
}

func TestHintGenerator_Next_RandomOrder(t *testing.T) {
	// Different seeds should eventually disagree on the first hint for the same session
	first := make(map[string]struct{})
	for seed := uint64(0); seed < 20; seed++ {
		gen := NewHintGenerator(rand.New(rand.NewPCG(seed, seed+1)))
		text, ok := gen.Next(42, nil, nil)
		require.True(t, ok)
		first[text] = struct{}{}
	}
	assert.Greater(t, len(first), 1)
}

func TestHintGenerator_Next_DoesNotMutateInputs(t *testing.T) {
	gen := NewHintGenerator(rand.New(rand.NewPCG(3, 4)))
	given := []string{"The number is even."}
	guesses := []int{10, 20}

	_, _ = gen.Next(42, guesses, given)

	assert.Equal(t, []string{"The number is even."}, given)
	assert.Equal(t, []int{10, 20}, guesses)
}
