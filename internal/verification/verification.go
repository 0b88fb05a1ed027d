// Package verification verifies that a generated listing recreates the input program.
package verification

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/assembler"
	"github.com/retroenv/retrogolib/log"
)

// maxLoggedDiffs limits the number of logged mismatching offsets.
const maxLoggedDiffs = 10

// VerifyListing reassembles the listing and verifies that it recreates the
// exact program image. The listing may omit trailing zero words of the image,
// everything it emits has to match.
func VerifyListing(logger *log.Logger, rom []byte, listing string) error {
	output, err := assembler.Assemble("listing.asm", listing)
	if err != nil {
		return fmt.Errorf("reassembling listing: %w", err)
	}

	if err := checkBufferEqual(logger, expectedImage(rom, len(output)), output); err != nil {
		return fmt.Errorf("program mismatch: %w", err)
	}
	return nil
}

func checkBufferEqual(logger *log.Logger, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(input), len(output))
	}

	var diffs uint64
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if diffs < maxLoggedDiffs {
			logger.Error("Offset mismatch",
				log.Hex("offset", i),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d offset mismatches", diffs)
}

// expectedImage returns the part of the program image that a listing of the
// given length recreates. Only whole trailing zero words can be left out.
func expectedImage(rom []byte, length int) []byte {
	if length >= len(rom) || length%2 != 0 {
		return rom
	}
	for _, b := range rom[length:] {
		if b != 0 {
			return rom
		}
	}
	return rom[:length]
}
