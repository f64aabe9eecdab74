package common

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// CountToInt converts an on-chain tally to int. Values the host int can't
// hold are an integrity error, they are never truncated.
func CountToInt(c uint64) (int, error) {
	if c > math.MaxInt {
		return 0, NewError(KindRemoteFailure, "vote count %d overflows the host integer", c)
	}
	return int(c), nil
}

func CountsToInts(counts []uint64) ([]int, error) {
	res := make([]int, len(counts))
	for i, c := range counts {
		v, err := CountToInt(c)
		if err != nil {
			return nil, err
		}
		res[i] = v
	}
	return res, nil
}

// ParsePollID parses a decimal on-chain poll id.
func ParsePollID(id string) (uint64, error) {
	res, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, NewError(KindNotFound, "Poll with ID %s not found", id)
	}
	return res, nil
}

func WeiToGwei(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e9)).Float64()
	return f
}

func FormatPercent(part, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(total))
}
