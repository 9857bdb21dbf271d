package dex

// Ethereum mainnet deployments, valid on any fork of chain 1.
const (
	MainnetV3Factory       = "0x1F98431c8aD98523631AE4a59f267346ea31F984"
	MainnetQuoterV1        = "0xb27308f9F90D607463bb33eA1BeBb41C27CE5AB6"
	MainnetPositionManager = "0xC36442b4a4522E871399CD717aBDD847Ab11FE88"
	MainnetWETH            = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
)
