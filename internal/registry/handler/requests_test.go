package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

// AllotAddressRequestSuite tests AllotAddressRequest validation and normalization.
type AllotAddressRequestSuite struct {
	suite.Suite
}

func TestAllotAddressRequestSuite(t *testing.T) {
	suite.Run(t, new(AllotAddressRequestSuite))
}

func (s *AllotAddressRequestSuite) TestValidation() {
	s.Run("valid request passes", func() {
		req := &AllotAddressRequest{Address: "192.168.1.1", ContentRef: "bundle-1"}
		s.NoError(req.Validate())
	})

	s.Run("missing address rejected", func() {
		req := &AllotAddressRequest{ContentRef: "bundle-1"}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "address is required")
	})

	s.Run("whitespace-only address rejected", func() {
		req := &AllotAddressRequest{Address: "   "}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "address is required")
	})

	s.Run("address exceeds max length rejected", func() {
		req := &AllotAddressRequest{Address: strings.Repeat("a", 257)}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "address must be at most 256 characters")
	})

	s.Run("address at max length allowed", func() {
		req := &AllotAddressRequest{Address: strings.Repeat("a", 256)}
		s.NoError(req.Validate())
	})

	s.Run("content_ref exceeds max length rejected", func() {
		req := &AllotAddressRequest{Address: "192.168.1.1", ContentRef: strings.Repeat("a", 513)}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "content_ref must be at most 512 characters")
	})

	s.Run("owner exceeds max length rejected", func() {
		req := &AllotAddressRequest{Address: "192.168.1.1", Owner: strings.Repeat("a", 129)}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "owner must be at most 128 characters")
	})

	s.Run("nil request rejected", func() {
		var req *AllotAddressRequest
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "request body is required")
	})
}

func (s *AllotAddressRequestSuite) TestNormalize() {
	s.Run("trims whitespace on all fields", func() {
		req := &AllotAddressRequest{
			Address:    "  192.168.1.1  ",
			ContentRef: "  bundle-1  ",
			Owner:      "  alice  ",
		}
		s.Require().NoError(req.Validate())
		s.Equal("192.168.1.1", req.Address)
		s.Equal("bundle-1", req.ContentRef)
		s.Equal("alice", req.Owner)
	})
}

// AssignDomainRequestSuite tests AssignDomainRequest validation and normalization.
type AssignDomainRequestSuite struct {
	suite.Suite
}

func TestAssignDomainRequestSuite(t *testing.T) {
	suite.Run(t, new(AssignDomainRequestSuite))
}

func (s *AssignDomainRequestSuite) TestValidation() {
	s.Run("valid request passes", func() {
		req := &AssignDomainRequest{Name: "example.com", Address: "192.168.1.1"}
		s.NoError(req.Validate())
	})

	s.Run("missing name rejected", func() {
		req := &AssignDomainRequest{Address: "192.168.1.1"}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "name is required")
	})

	s.Run("missing address rejected", func() {
		req := &AssignDomainRequest{Name: "example.com"}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "address is required")
	})

	s.Run("name exceeds max length rejected", func() {
		req := &AssignDomainRequest{Name: strings.Repeat("a", 254), Address: "192.168.1.1"}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "name must be at most 253 characters")
	})

	s.Run("name at max length allowed", func() {
		req := &AssignDomainRequest{Name: strings.Repeat("a", 253), Address: "192.168.1.1"}
		s.NoError(req.Validate())
	})

	s.Run("nil request rejected", func() {
		var req *AssignDomainRequest
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "request body is required")
	})
}

func (s *AssignDomainRequestSuite) TestNormalize() {
	s.Run("trims whitespace but keeps case", func() {
		req := &AssignDomainRequest{
			Name:    "  Example.COM  ",
			Address: "  192.168.1.1  ",
			Owner:   "  alice  ",
		}
		s.Require().NoError(req.Validate())
		// Lowercasing happens in the service, not the transport.
		s.Equal("Example.COM", req.Name)
		s.Equal("192.168.1.1", req.Address)
		s.Equal("alice", req.Owner)
	})
}

// DomainActionRequestSuite tests the single-field domain action requests.
type DomainActionRequestSuite struct {
	suite.Suite
}

func TestDomainActionRequestSuite(t *testing.T) {
	suite.Run(t, new(DomainActionRequestSuite))
}

func (s *DomainActionRequestSuite) TestUpdateDomainRequest() {
	s.Run("valid request passes", func() {
		req := &UpdateDomainRequest{Address: "10.0.0.2"}
		s.NoError(req.Validate())
	})

	s.Run("missing address rejected", func() {
		req := &UpdateDomainRequest{}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "address is required")
	})

	s.Run("address exceeds max length rejected", func() {
		req := &UpdateDomainRequest{Address: strings.Repeat("a", 257)}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "address must be at most 256 characters")
	})

	s.Run("nil request rejected", func() {
		var req *UpdateDomainRequest
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "request body is required")
	})
}

func (s *DomainActionRequestSuite) TestBuyDomainRequest() {
	s.Run("any payment value passes validation", func() {
		s.NoError((&BuyDomainRequest{Payment: 500}).Validate())
		// Zero is structurally valid; it fails against the price instead.
		s.NoError((&BuyDomainRequest{}).Validate())
	})

	s.Run("nil request rejected", func() {
		var req *BuyDomainRequest
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "request body is required")
	})
}

func (s *DomainActionRequestSuite) TestTransferDomainRequest() {
	s.Run("valid request passes", func() {
		req := &TransferDomainRequest{NewOwner: "bob"}
		s.NoError(req.Validate())
	})

	s.Run("missing new_owner rejected", func() {
		req := &TransferDomainRequest{}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "new_owner is required")
	})

	s.Run("new_owner exceeds max length rejected", func() {
		req := &TransferDomainRequest{NewOwner: strings.Repeat("a", 129)}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "new_owner must be at most 128 characters")
	})

	s.Run("trims whitespace", func() {
		req := &TransferDomainRequest{NewOwner: "  bob  "}
		s.Require().NoError(req.Validate())
		s.Equal("bob", req.NewOwner)
	})
}

// WithdrawFeesRequestSuite tests WithdrawFeesRequest validation.
type WithdrawFeesRequestSuite struct {
	suite.Suite
}

func TestWithdrawFeesRequestSuite(t *testing.T) {
	suite.Run(t, new(WithdrawFeesRequestSuite))
}

func (s *WithdrawFeesRequestSuite) TestValidation() {
	s.Run("valid request passes", func() {
		req := &WithdrawFeesRequest{Amount: 200, Recipient: "treasury"}
		s.NoError(req.Validate())
	})

	s.Run("missing recipient rejected", func() {
		req := &WithdrawFeesRequest{Amount: 200}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "recipient is required")
	})

	s.Run("zero amount rejected", func() {
		req := &WithdrawFeesRequest{Recipient: "treasury"}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "amount must be greater than zero")
	})

	s.Run("recipient exceeds max length rejected", func() {
		req := &WithdrawFeesRequest{Amount: 200, Recipient: strings.Repeat("a", 129)}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "recipient must be at most 128 characters")
	})

	s.Run("nil request rejected", func() {
		var req *WithdrawFeesRequest
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "request body is required")
	})
}
