package ftso

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
)

const fetchAllFeedsMethod = "fetchAllFeeds"

// ConsumerABI is the minimal ABI of the FTSOConsumer contract.
const ConsumerABI = `[
	{
		"type": "function",
		"name": "fetchAllFeeds",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [
			{"name": "indices", "type": "uint256[]"},
			{"name": "symbols", "type": "string[]"},
			{"name": "prices", "type": "uint256[]"},
			{"name": "decimals", "type": "int8[]"},
			{"name": "timestamps", "type": "uint64[]"}
		]
	}
]`

// ParseConsumerABI parses the embedded consumer ABI.
func ParseConsumerABI() (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(ConsumerABI))
	if err != nil {
		return abi.ABI{}, errors.Wrap(err, "failed to parse consumer ABI")
	}

	return parsed, nil
}

type hardhatArtifact struct {
	ABI json.RawMessage `json:"abi"`
}

// LoadArtifactABI reads the ABI from a Hardhat artifact JSON file ({"abi": [...]}).
func LoadArtifactABI(path string) (abi.ABI, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return abi.ABI{}, errors.Wrapf(err, "failed to read ABI artifact %s", path)
	}

	var artifact hardhatArtifact
	if err := json.Unmarshal(body, &artifact); err != nil {
		return abi.ABI{}, errors.Wrapf(err, "failed to unmarshal ABI artifact %s", path)
	}

	if len(artifact.ABI) == 0 {
		return abi.ABI{}, errors.Errorf("ABI artifact %s has no abi field", path)
	}

	parsed, err := abi.JSON(strings.NewReader(string(artifact.ABI)))
	if err != nil {
		return abi.ABI{}, errors.Wrapf(err, "failed to parse ABI from %s", path)
	}

	if _, ok := parsed.Methods[fetchAllFeedsMethod]; !ok {
		return abi.ABI{}, errors.Errorf("ABI from %s has no %s method", path, fetchAllFeedsMethod)
	}

	return parsed, nil
}
