package transport

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-openstack/core"
)

func transportError(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryExternal).
		WithCode(http.StatusBadGateway).
		WithTextCode(core.CloudErrorTransportFailure)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportWrapError(source error, message string, metadata map[string]any) error {
	if source == nil {
		return transportError(message, metadata)
	}
	err := goerrors.Wrap(source, goerrors.CategoryExternal, message).
		WithCode(http.StatusBadGateway).
		WithTextCode(core.CloudErrorTransportFailure)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func badRequestError(source error, message string, metadata map[string]any) error {
	var err *goerrors.Error
	if source != nil {
		err = goerrors.Wrap(source, goerrors.CategoryBadInput, message)
	} else {
		err = goerrors.New(message, goerrors.CategoryBadInput)
	}
	err = err.WithCode(http.StatusBadRequest).WithTextCode(core.CloudErrorBadConfig)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}
