package httpapi

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sealreg/internal/domain"
	"sealreg/internal/infra/metrics"
	"sealreg/internal/usecase"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type registerProofRequest struct {
	DatasetID      string `json:"dataset_id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	MediaType      string `json:"media_type"`
	SizeBytes      uint64 `json:"size_bytes"`
	ContentHashHex string `json:"content_hash"`
	BlobRef        string `json:"blob_ref"`
	PolicyRef      string `json:"policy_ref"`
	TimestampMS    uint64 `json:"timestamp_ms"`
	SubmittedBy    string `json:"submitted_by"`
	AttesterID     string `json:"attester_id"`
	Signature      string `json:"signature"` // base64
	Owner          string `json:"owner"`
}

type proofResponse struct {
	ID            string `json:"id"`
	DatasetID     string `json:"dataset_id"`
	ContentHash   string `json:"content_hash"`
	MetadataHash  string `json:"metadata_hash"`
	BlobRef       string `json:"blob_ref"`
	PolicyRef     string `json:"policy_ref"`
	AccessListID  string `json:"access_list_id,omitempty"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	MediaType     string `json:"media_type"`
	SizeBytes     uint64 `json:"size_bytes"`
	SchemaVersion uint8  `json:"schema_version"`
	VerifiedAtMS  uint64 `json:"verified_at_ms"`
	Attester      string `json:"attester"`
	Owner         string `json:"owner"`
}

func buildProofResponse(record *domain.ProofRecord) proofResponse {
	return proofResponse{
		ID:            record.ID,
		DatasetID:     record.DatasetID,
		ContentHash:   hex.EncodeToString(record.ContentHash),
		MetadataHash:  hex.EncodeToString(record.MetadataHash),
		BlobRef:       record.BlobRef,
		PolicyRef:     record.PolicyRef,
		AccessListID:  record.AccessListID,
		Name:          record.Name,
		Description:   record.Description,
		MediaType:     record.MediaType,
		SizeBytes:     record.SizeBytes,
		SchemaVersion: record.SchemaVersion,
		VerifiedAtMS:  record.VerifiedAtMS,
		Attester:      record.Attester,
		Owner:         record.Owner,
	}
}

func (s *Server) handleRegisterProof(c *gin.Context) {
	var req registerProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	contentHash, err := hex.DecodeString(req.ContentHashHex)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_CONTENT_HASH", "content_hash must be hex")
		return
	}
	sig, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_SIGNATURE_ENCODING", "signature must be base64")
		return
	}

	record, err := s.register.Execute(c.Request.Context(), usecase.RegisterProofRequest{
		Payload: domain.VerificationPayload{
			DatasetID:   req.DatasetID,
			Name:        req.Name,
			Description: req.Description,
			MediaType:   req.MediaType,
			SizeBytes:   req.SizeBytes,
			ContentHash: contentHash,
			BlobRef:     req.BlobRef,
			PolicyRef:   req.PolicyRef,
			TimestampMS: req.TimestampMS,
			SubmittedBy: req.SubmittedBy,
		},
		Signature:  sig,
		AttesterID: req.AttesterID,
		Owner:      req.Owner,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSignature):
			metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		case errors.Is(err, domain.ErrPolicyRejected):
			metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		default:
			metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		}
		writeError(c, err)
		return
	}
	metrics.RegistrationsTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	s.log.Info("proof registered", "record_id", record.ID, "dataset_id", record.DatasetID, "attester", record.Attester)
	c.JSON(http.StatusCreated, buildProofResponse(record))
}

func (s *Server) handleGetProof(c *gin.Context) {
	record, err := s.proofs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildProofResponse(record))
}

type transferRequest struct {
	CurrentOwner string `json:"current_owner"`
	NewOwner     string `json:"new_owner"`
}

func (s *Server) handleTransferProof(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if err := s.register.Transfer(c.Request.Context(), c.Param("id"), req.CurrentOwner, req.NewOwner); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transferred": true})
}

type attachACLRequest struct {
	AccessListID string `json:"access_list_id"`
	CapabilityID string `json:"capability_id"`
	Owner        string `json:"owner"`
}

// handleAttachACL binds an access list to a proof record. The caller must be
// the record owner and present the list's admin capability.
func (s *Server) handleAttachACL(c *gin.Context) {
	var req attachACLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	ctx := c.Request.Context()
	record, err := s.proofs.GetByID(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if record.Owner != req.Owner {
		writeError(c, domain.ErrNotOwner)
		return
	}
	list, err := s.lists.Get(ctx, req.AccessListID)
	if err != nil {
		writeError(c, err)
		return
	}
	cap, err := s.lists.GetCapability(ctx, req.CapabilityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, domain.ErrNotOwner)
			return
		}
		writeError(c, err)
		return
	}
	if !cap.Controls(list) {
		writeError(c, domain.ErrNotOwner)
		return
	}
	if err := s.proofs.AttachAccessList(ctx, record.ID, list.ID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attached": true})
}

type createACLRequest struct {
	Name string `json:"name"`
}

type createACLResponse struct {
	AccessListID string `json:"access_list_id"`
	CapabilityID string `json:"capability_id"`
	Name         string `json:"name"`
}

func (s *Server) handleCreateACL(c *gin.Context) {
	var req createACLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	list, cap, err := s.access.Create(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, createACLResponse{
		AccessListID: list.ID,
		CapabilityID: cap.ID,
		Name:         list.Name,
	})
}

type memberRequest struct {
	CapabilityID string `json:"capability_id"`
	Principal    string `json:"principal"`
}

func (s *Server) handleAddMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if err := s.access.AddMember(c.Request.Context(), c.Param("id"), req.CapabilityID, req.Principal); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": true})
}

func (s *Server) handleRemoveMember(c *gin.Context) {
	capID := c.Query("capability_id")
	if err := s.access.RemoveMember(c.Request.Context(), c.Param("id"), capID, c.Param("principal")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": true})
}

type attachKeyRequest struct {
	CapabilityID string `json:"capability_id"`
	Key          string `json:"key"` // hex
}

func (s *Server) handleAttachKey(c *gin.Context) {
	var req attachKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	key, err := hex.DecodeString(req.Key)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_KEY", "key must be hex")
		return
	}
	if err := s.access.Attach(c.Request.Context(), c.Param("id"), req.CapabilityID, key); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attached": true})
}

type approveACLRequest struct {
	RequestID    string `json:"request_id"` // hex
	AccessListID string `json:"access_list_id"`
	Requester    string `json:"requester"`
}

type approveResponse struct {
	Approved bool `json:"approved"`
}

func (s *Server) handleApproveACL(c *gin.Context) {
	if !s.enforceRateLimit(c, "approve:acl") {
		return
	}
	var req approveACLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	requestID, err := hex.DecodeString(req.RequestID)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST_ID", "request_id must be hex")
		return
	}
	approved, err := s.approval.ApproveACL(c.Request.Context(), requestID, req.AccessListID, req.Requester)
	if err != nil {
		metrics.ApprovalsTotal.WithLabelValues(metrics.PathACL, metrics.OutcomeError).Inc()
		writeError(c, err)
		return
	}
	outcome := metrics.OutcomeDenied
	if approved {
		outcome = metrics.OutcomeOK
	}
	metrics.ApprovalsTotal.WithLabelValues(metrics.PathACL, outcome).Inc()
	c.JSON(http.StatusOK, approveResponse{Approved: approved})
}

type approveSubscriptionRequest struct {
	RequestID string `json:"request_id"` // hex
	ReceiptID string `json:"receipt_id"`
	ListingID string `json:"listing_id"`
}

func (s *Server) handleApproveSubscription(c *gin.Context) {
	if !s.enforceRateLimit(c, "approve:subscription") {
		return
	}
	var req approveSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	requestID, err := hex.DecodeString(req.RequestID)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST_ID", "request_id must be hex")
		return
	}
	approved, err := s.approval.ApproveSubscription(c.Request.Context(), requestID, req.ReceiptID, req.ListingID)
	if err != nil {
		metrics.ApprovalsTotal.WithLabelValues(metrics.PathSubscription, metrics.OutcomeError).Inc()
		writeError(c, err)
		return
	}
	outcome := metrics.OutcomeDenied
	if approved {
		outcome = metrics.OutcomeOK
	}
	metrics.ApprovalsTotal.WithLabelValues(metrics.PathSubscription, outcome).Inc()
	c.JSON(http.StatusOK, approveResponse{Approved: approved})
}

type createListingRequest struct {
	ProofRecordID  string `json:"proof_record_id"`
	Seller         string `json:"seller"`
	Price          uint64 `json:"price"`
	SubscriptionMS uint64 `json:"subscription_ms"`
}

type listingResponse struct {
	ID             string `json:"id"`
	ProofRecordID  string `json:"proof_record_id"`
	Seller         string `json:"seller"`
	Name           string `json:"name"`
	BlobRef        string `json:"blob_ref"`
	Price          uint64 `json:"price"`
	SubscriptionMS uint64 `json:"subscription_ms"`
	Active         bool   `json:"active"`
	SaleCount      uint64 `json:"sale_count"`
}

func (s *Server) handleCreateListing(c *gin.Context) {
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	listing, err := s.settle.CreateListing(c.Request.Context(), usecase.CreateListingRequest{
		ProofRecordID:  req.ProofRecordID,
		Seller:         req.Seller,
		Price:          req.Price,
		SubscriptionMS: req.SubscriptionMS,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listingResponse{
		ID:             listing.ID,
		ProofRecordID:  listing.ProofRecordID,
		Seller:         listing.Seller,
		Name:           listing.Name,
		BlobRef:        listing.BlobRef,
		Price:          listing.Price,
		SubscriptionMS: listing.SubscriptionMS,
		Active:         listing.Active,
		SaleCount:      listing.SaleCount,
	})
}

type updatePriceRequest struct {
	Seller string `json:"seller"`
	Price  uint64 `json:"price"`
}

func (s *Server) handleUpdatePrice(c *gin.Context) {
	var req updatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if err := s.settle.UpdatePrice(c.Request.Context(), c.Param("id"), req.Seller, req.Price); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

type updateStatusRequest struct {
	Seller string `json:"seller"`
	Active bool   `json:"active"`
}

func (s *Server) handleUpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if err := s.settle.UpdateStatus(c.Request.Context(), c.Param("id"), req.Seller, req.Active); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}

type purchaseRequest struct {
	Buyer   string `json:"buyer"`
	Payment uint64 `json:"payment"`
}

type purchaseResponse struct {
	ReceiptID     string `json:"receipt_id"`
	ListingID     string `json:"listing_id"`
	BlobRef       string `json:"blob_ref"`
	PurchasedAtMS uint64 `json:"purchased_at_ms"`
	ExpiresAtMS   uint64 `json:"expires_at_ms"`
	PlatformFee   uint64 `json:"platform_fee"`
	SellerNet     uint64 `json:"seller_net"`
}

func (s *Server) handlePurchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	result, err := s.settle.Purchase(c.Request.Context(), c.Param("id"), req.Buyer, req.Payment)
	if err != nil {
		metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeError).Inc()
		writeError(c, err)
		return
	}
	metrics.PurchasesTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	metrics.PlatformFeesCollected.Add(float64(result.PlatformFee))
	s.log.Info("listing purchased", "listing_id", result.Receipt.ListingID, "receipt_id", result.Receipt.ID)
	c.JSON(http.StatusCreated, purchaseResponse{
		ReceiptID:     result.Receipt.ID,
		ListingID:     result.Receipt.ListingID,
		BlobRef:       result.Receipt.BlobRef,
		PurchasedAtMS: result.Receipt.PurchasedAtMS,
		ExpiresAtMS:   result.Receipt.ExpiresAtMS,
		PlatformFee:   result.PlatformFee,
		SellerNet:     result.SellerNet,
	})
}

type withdrawRequest struct {
	Amount uint64 `json:"amount"`
}

func (s *Server) handleWithdraw(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if err := s.settle.WithdrawEarnings(c.Request.Context(), c.GetHeader("X-Admin-Token"), req.Amount); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawn": true})
}

type registerAttesterRequest struct {
	AttesterID string `json:"attester_id"`
	Alg        string `json:"alg"`
	PublicKey  string `json:"public_key"` // base64
}

func (s *Server) handleRegisterAttester(c *gin.Context) {
	if !s.requireAdmin(c) {
		return
	}
	var req registerAttesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return
	}
	if req.AttesterID == "" {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_ATTESTER", "attester_id is required")
		return
	}
	key, err := base64.StdEncoding.DecodeString(req.PublicKey)
	if err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_PUBLIC_KEY", "public_key must be base64")
		return
	}
	alg := req.Alg
	if alg == "" {
		alg = domain.SigAlgEd25519
	}
	err = s.attesters.Register(c.Request.Context(), domain.AttesterConfig{
		AttesterID: req.AttesterID,
		Alg:        alg,
		PublicKey:  key,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"registered": true})
}

func (s *Server) requireAdmin(c *gin.Context) bool {
	token := c.GetHeader("X-Admin-Token")
	if s.adminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "admin token required")
		return false
	}
	return true
}

func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidSignature):
		status, code = http.StatusBadRequest, "INVALID_SIGNATURE"
	case errors.Is(err, domain.ErrPolicyRejected):
		status, code = http.StatusUnprocessableEntity, "POLICY_REJECTED"
	case errors.Is(err, domain.ErrNotOwner):
		status, code = http.StatusForbidden, "NOT_OWNER"
	case errors.Is(err, domain.ErrNotSeller):
		status, code = http.StatusForbidden, "NOT_SELLER"
	case errors.Is(err, domain.ErrDuplicateMember):
		status, code = http.StatusConflict, "DUPLICATE_MEMBER"
	case errors.Is(err, domain.ErrInvalidPrice):
		status, code = http.StatusBadRequest, "INVALID_PRICE"
	case errors.Is(err, domain.ErrInsufficientPayment):
		status, code = http.StatusPaymentRequired, "INSUFFICIENT_PAYMENT"
	case errors.Is(err, domain.ErrListingInactive):
		status, code = http.StatusConflict, "LISTING_INACTIVE"
	case errors.Is(err, domain.ErrWrongVersion):
		status, code = http.StatusConflict, "WRONG_VERSION"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	}
	writeErrorCode(c, status, code, err.Error())
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{Code: code, Message: message})
}
