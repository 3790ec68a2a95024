// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package props

import "math/big"

// Constants of the staking protocol.
const (
	// PphmUnit is parts per hundred million, the denominator of all
	// percentage-valued protocol parameters. 1e8 == 100%.
	PphmUnit uint64 = 1e8

	// PpmUnit is parts per million, the denominator of user supplied
	// restaking percentage lists. 1e6 == 100%.
	PpmUnit uint64 = 1e6

	// DefaultDaySeconds is the length of a reward day unless overridden
	// at genesis.
	DefaultDaySeconds uint64 = 24 * 60 * 60
)

// Keys of governance params. Values are day-indexed, see the params package.
var (
	KeyAppRewardsPercent             = BytesToBytes32([]byte("app-rewards-percent"))
	KeyAppRewardsMaxVariationPercent = BytesToBytes32([]byte("app-rewards-max-variation-percent"))
	KeyValidatorMajorityPercent      = BytesToBytes32([]byte("validator-majority-percent"))
	KeyValidatorRewardsPercent       = BytesToBytes32([]byte("validator-rewards-percent"))
	KeyUserRewardsPercent            = BytesToBytes32([]byte("user-rewards-percent"))
	KeyEscrowCooldownDays            = BytesToBytes32([]byte("escrow-cooldown-days"))

	InitialAppRewardsPercent             = big.NewInt(34_150)     // 0.03415% of remaining supply per day
	InitialAppRewardsMaxVariationPercent = big.NewInt(150_000_00) // 15% allowed variation
	InitialValidatorMajorityPercent      = big.NewInt(50_000_000) // 50%, quorum is floor(n*pct/1e8)+1
	InitialValidatorRewardsPercent       = big.NewInt(1_830)      // 0.00183% of remaining supply per day
	InitialUserRewardsPercent            = big.NewInt(4_000)      // 0.004% of remaining supply per day
	InitialEscrowCooldownDays            = big.NewInt(90)

	// MaxTokenSupply is the hard cap of the base token. Daily reward
	// budgets are percentages of what remains below the cap.
	MaxTokenSupply = new(big.Int).Mul(big.NewInt(1e9), big.NewInt(1e18))

	// MaxStakeAmount bounds the magnitude of a single stake adjustment so
	// that signed deltas stay representable. 2^255 - 1.
	MaxStakeAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))
)
