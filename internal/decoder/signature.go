package decoder

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var (
	nameRe  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	paramRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// Param is one parameter of a parsed signature.
type Param struct {
	Name    string
	Type    string
	Indexed bool
}

// Signature is a parsed human readable function or event signature.
type Signature struct {
	Raw    string
	Name   string
	Params []Param
}

// ParseSignature parses signatures such as
//
//	"Transfer(address indexed from, address indexed to, uint256 value)"
//	"swapOwner(address prevOwner, address oldOwner, address newOwner)"
//
// Unnamed parameters are named argN.
func ParseSignature(sig string) (*Signature, error) {
	sig = strings.TrimSpace(sig)
	if sig == "" {
		return nil, fmt.Errorf("empty signature")
	}

	openParen := strings.Index(sig, "(")
	closeParen := strings.LastIndex(sig, ")")
	if openParen == -1 || closeParen == -1 || closeParen < openParen {
		return nil, fmt.Errorf("invalid signature %q: malformed parentheses", sig)
	}

	name := strings.TrimSpace(sig[:openParen])
	if !nameRe.MatchString(name) {
		return nil, fmt.Errorf("invalid signature %q: bad name %q", sig, name)
	}

	params, err := parseParams(sig[openParen+1 : closeParen])
	if err != nil {
		return nil, fmt.Errorf("invalid signature %q: %w", sig, err)
	}

	return &Signature{Raw: sig, Name: name, Params: params}, nil
}

func parseParams(list string) ([]Param, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}

	parts := strings.Split(list, ",")
	params := make([]Param, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))

	for i, part := range parts {
		fields := strings.Fields(part)
		param := Param{Name: fmt.Sprintf("arg%d", i)}

		switch len(fields) {
		case 1:
			param.Type = fields[0]
		case 2: //nolint:mnd
			param.Type = fields[0]
			if fields[1] == "indexed" {
				param.Indexed = true
			} else {
				param.Name = fields[1]
			}
		case 3: //nolint:mnd
			if fields[1] != "indexed" {
				return nil, fmt.Errorf("expected 'indexed', got %q", fields[1])
			}
			param.Type, param.Indexed, param.Name = fields[0], true, fields[2]
		default:
			return nil, fmt.Errorf("malformed parameter %q", strings.TrimSpace(part))
		}

		if !paramRe.MatchString(param.Name) {
			return nil, fmt.Errorf("invalid parameter name %q", param.Name)
		}
		if _, dup := seen[param.Name]; dup {
			return nil, fmt.Errorf("duplicate parameter name %q", param.Name)
		}
		seen[param.Name] = struct{}{}

		params = append(params, param)
	}

	return params, nil
}

// arguments converts the parameters to ABI arguments, validating every type.
func (s *Signature) arguments() (abi.Arguments, error) {
	args := make(abi.Arguments, 0, len(s.Params))
	for _, p := range s.Params {
		typ, err := abi.NewType(p.Type, "", nil)
		if err != nil {
			return nil, fmt.Errorf("invalid type %q in %s: %w", p.Type, s.Name, err)
		}
		args = append(args, abi.Argument{Name: p.Name, Type: typ, Indexed: p.Indexed})
	}
	return args, nil
}

// Method builds the ABI method described by the signature.
func (s *Signature) Method() (abi.Method, error) {
	inputs, err := s.arguments()
	if err != nil {
		return abi.Method{}, err
	}
	return abi.NewMethod(s.Name, s.Name, abi.Function, "nonpayable", false, false, inputs, nil), nil
}

// Event builds the ABI event described by the signature.
func (s *Signature) Event() (abi.Event, error) {
	inputs, err := s.arguments()
	if err != nil {
		return abi.Event{}, err
	}
	return abi.NewEvent(s.Name, s.Name, false, inputs), nil
}
