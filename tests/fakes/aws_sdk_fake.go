package fakes

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// FakeSecretsManagerClient is an in-memory stand-in for the Secrets Manager
// client. CreateSecret fails with ResourceExistsException for known names,
// mirroring the real service.
type FakeSecretsManagerClient struct {
	// Secrets maps secret names to their data
	Secrets map[string]*SecretData
	// Errors maps secret names to errors returned by every operation
	Errors map[string]error

	// CreateInputs and UpdateInputs record what was sent, in call order
	CreateInputs []*secretsmanager.CreateSecretInput
	UpdateInputs []*secretsmanager.UpdateSecretInput

	// Func fields override the default behavior of each operation
	GetSecretValueFunc func(ctx context.Context, params *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error)
	CreateSecretFunc   func(ctx context.Context, params *secretsmanager.CreateSecretInput) (*secretsmanager.CreateSecretOutput, error)
	UpdateSecretFunc   func(ctx context.Context, params *secretsmanager.UpdateSecretInput) (*secretsmanager.UpdateSecretOutput, error)

	mu sync.Mutex
}

// SecretData holds the data for a fake secret
type SecretData struct {
	SecretString *string
	SecretBinary []byte
	Description  *string
	Tags         []types.Tag
	Versions     int
}

// NewFakeSecretsManagerClient creates an empty fake client
func NewFakeSecretsManagerClient() *FakeSecretsManagerClient {
	return &FakeSecretsManagerClient{
		Secrets: make(map[string]*SecretData),
		Errors:  make(map[string]error),
	}
}

// AddSecretString seeds a text secret
func (f *FakeSecretsManagerClient) AddSecretString(name, value string) {
	f.Secrets[name] = &SecretData{SecretString: aws.String(value), Versions: 1}
}

// AddSecretBinary seeds a binary secret
func (f *FakeSecretsManagerClient) AddSecretBinary(name string, value []byte) {
	f.Secrets[name] = &SecretData{SecretBinary: clone(value), Versions: 1}
}

// AddError configures an error for a specific secret
func (f *FakeSecretsManagerClient) AddError(name string, err error) {
	f.Errors[name] = err
}

// GetSecretValue fakes the GetSecretValue operation
func (f *FakeSecretsManagerClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	if f.GetSecretValueFunc != nil {
		return f.GetSecretValueFunc(ctx, params)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(params.SecretId)
	if err, exists := f.Errors[name]; exists {
		return nil, err
	}

	data, exists := f.Secrets[name]
	if !exists {
		return nil, smNotFound(name)
	}

	return &secretsmanager.GetSecretValueOutput{
		ARN:           aws.String(smARN(name)),
		Name:          params.SecretId,
		SecretString:  data.SecretString,
		SecretBinary:  clone(data.SecretBinary),
		VersionStages: []string{"AWSCURRENT"},
	}, nil
}

// CreateSecret fakes the CreateSecret operation
func (f *FakeSecretsManagerClient) CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error) {
	if f.CreateSecretFunc != nil {
		return f.CreateSecretFunc(ctx, params)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.CreateInputs = append(f.CreateInputs, params)

	name := aws.ToString(params.Name)
	if err, exists := f.Errors[name]; exists {
		return nil, err
	}
	if _, exists := f.Secrets[name]; exists {
		return nil, &types.ResourceExistsException{
			Message: aws.String(fmt.Sprintf("The operation failed because the secret %s already exists.", name)),
		}
	}

	f.Secrets[name] = &SecretData{
		SecretString: params.SecretString,
		SecretBinary: clone(params.SecretBinary),
		Description:  params.Description,
		Tags:         append([]types.Tag(nil), params.Tags...),
		Versions:     1,
	}

	return &secretsmanager.CreateSecretOutput{
		ARN:  aws.String(smARN(name)),
		Name: params.Name,
	}, nil
}

// UpdateSecret fakes the UpdateSecret operation
func (f *FakeSecretsManagerClient) UpdateSecret(ctx context.Context, params *secretsmanager.UpdateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.UpdateSecretOutput, error) {
	if f.UpdateSecretFunc != nil {
		return f.UpdateSecretFunc(ctx, params)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.UpdateInputs = append(f.UpdateInputs, params)

	name := aws.ToString(params.SecretId)
	if err, exists := f.Errors[name]; exists {
		return nil, err
	}

	data, exists := f.Secrets[name]
	if !exists {
		return nil, smNotFound(name)
	}

	data.SecretString = params.SecretString
	data.SecretBinary = clone(params.SecretBinary)
	if params.Description != nil {
		data.Description = params.Description
	}
	data.Versions++

	return &secretsmanager.UpdateSecretOutput{
		ARN:  aws.String(smARN(name)),
		Name: params.SecretId,
	}, nil
}

func smARN(name string) string {
	return fmt.Sprintf("arn:aws:secretsmanager:us-east-1:123456789012:secret:%s", name)
}

func smNotFound(name string) error {
	return &types.ResourceNotFoundException{
		Message: aws.String(fmt.Sprintf("Secrets Manager can't find the specified secret: %s", name)),
	}
}

// FakeSSMClient is an in-memory stand-in for the SSM client. PutParameter
// without Overwrite fails with ParameterAlreadyExists for known names.
type FakeSSMClient struct {
	// Parameters maps parameter names to their data
	Parameters map[string]*ParameterData
	// Errors maps parameter names to errors returned by every operation
	Errors map[string]error

	// PutInputs records every PutParameter call in order
	PutInputs []*ssm.PutParameterInput

	GetParameterFunc func(ctx context.Context, params *ssm.GetParameterInput) (*ssm.GetParameterOutput, error)
	PutParameterFunc func(ctx context.Context, params *ssm.PutParameterInput) (*ssm.PutParameterOutput, error)

	mu sync.Mutex
}

// ParameterData holds the data for a fake SSM parameter
type ParameterData struct {
	Type        ssmtypes.ParameterType
	Value       string
	Description *string
	Tags        []ssmtypes.Tag
	KeyID       *string
	Version     int64
}

// NewFakeSSMClient creates an empty fake client
func NewFakeSSMClient() *FakeSSMClient {
	return &FakeSSMClient{
		Parameters: make(map[string]*ParameterData),
		Errors:     make(map[string]error),
	}
}

// AddSecureStringParameter seeds a SecureString parameter
func (f *FakeSSMClient) AddSecureStringParameter(name, value string) {
	f.Parameters[name] = &ParameterData{
		Type:    ssmtypes.ParameterTypeSecureString,
		Value:   value,
		Version: 1,
	}
}

// AddError configures an error for a specific parameter
func (f *FakeSSMClient) AddError(name string, err error) {
	f.Errors[name] = err
}

// GetParameter fakes the GetParameter operation
func (f *FakeSSMClient) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	if f.GetParameterFunc != nil {
		return f.GetParameterFunc(ctx, params)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	name := aws.ToString(params.Name)
	if err, exists := f.Errors[name]; exists {
		return nil, err
	}

	data, exists := f.Parameters[name]
	if !exists {
		return nil, &ssmtypes.ParameterNotFound{Message: aws.String(fmt.Sprintf("Parameter %s not found.", name))}
	}

	value := data.Value
	if data.Type == ssmtypes.ParameterTypeSecureString && !aws.ToBool(params.WithDecryption) {
		value = "AQICAHencrypted=="
	}

	return &ssm.GetParameterOutput{
		Parameter: &ssmtypes.Parameter{
			Name:    params.Name,
			Type:    data.Type,
			Value:   aws.String(value),
			Version: data.Version,
			ARN:     aws.String(fmt.Sprintf("arn:aws:ssm:us-east-1:123456789012:parameter%s", name)),
		},
	}, nil
}

// PutParameter fakes the PutParameter operation
func (f *FakeSSMClient) PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
	if f.PutParameterFunc != nil {
		return f.PutParameterFunc(ctx, params)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.PutInputs = append(f.PutInputs, params)

	name := aws.ToString(params.Name)
	if err, exists := f.Errors[name]; exists {
		return nil, err
	}

	existing, exists := f.Parameters[name]
	if exists && !aws.ToBool(params.Overwrite) {
		return nil, &ssmtypes.ParameterAlreadyExists{Message: aws.String("The parameter already exists. To overwrite this value, set the overwrite option in the request to true.")}
	}
	if exists && len(params.Tags) > 0 {
		return nil, &ssmtypes.ValidationException{Message: aws.String("Invalid request: tags and overwrite can't be used together.")}
	}

	if exists {
		existing.Value = aws.ToString(params.Value)
		existing.Type = params.Type
		existing.Version++
		return &ssm.PutParameterOutput{Version: existing.Version}, nil
	}

	f.Parameters[name] = &ParameterData{
		Type:        params.Type,
		Value:       aws.ToString(params.Value),
		Description: params.Description,
		Tags:        append([]ssmtypes.Tag(nil), params.Tags...),
		KeyID:       params.KeyId,
		Version:     1,
	}
	return &ssm.PutParameterOutput{Version: 1}, nil
}

// FakeSTSClient answers GetCallerIdentity for credential checks
type FakeSTSClient struct {
	Account string
	Arn     string
	Err     error
	Calls   int
}

// GetCallerIdentity fakes the GetCallerIdentity operation
func (f *FakeSTSClient) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	account := f.Account
	if account == "" {
		account = "123456789012"
	}
	arn := f.Arn
	if arn == "" {
		arn = "arn:aws:iam::123456789012:user/test"
	}
	return &sts.GetCallerIdentityOutput{
		Account: aws.String(account),
		Arn:     aws.String(arn),
		UserId:  aws.String("AIDATEST"),
	}, nil
}
