package auth

// Service handles authentication: credential checks and token lifecycle.
type Service struct {
	repo     RepositoryAPI
	tokenGen TokenGeneratorAPI
}

func NewService(repo RepositoryAPI, tokenGen TokenGeneratorAPI) *Service {
	return &Service{
		repo:     repo,
		tokenGen: tokenGen,
	}
}

// Authenticate validates credentials and returns an access/refresh token pair.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	storedHash, userID, err := s.repo.GetPasswordForEmail(dto.Email)
	if err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	if err := VerifyPassword(storedHash, dto.Password); err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// RefreshTokens validates a refresh token and rotates the pair.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGen.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	user, err := s.repo.GetUserByID(claims.UserID)
	if err != nil {
		return AuthTokens{}, ErrInvalidToken
	}

	return s.issueTokens(user)
}

func (s *Service) issueTokens(user *User) (AuthTokens, error) {
	accessToken, err := s.tokenGen.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokenGen.GenerateRefreshToken(user.ID, user.Email, user.Role)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateAccessToken validates an access token and returns its claims.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGen.ValidateAccessToken(tokenString)
}

// GetUser loads the full user record behind a token subject.
func (s *Service) GetUser(userID int64) (*User, error) {
	return s.repo.GetUserByID(userID)
}
