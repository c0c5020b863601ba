// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package dnsclient_test

import (
	"strings"
	"testing"

	"github.com/kedster/3ptracer/internal/dnsclient"
)

func TestValidateDomain(t *testing.T) {
	valid := []string{
		"example.com",
		"sub.example.com",
		"example.com.",
		"  example.com  ",
		"xn--bcher-kva.example",
		"a-b.example.co.uk",
	}
	for _, d := range valid {
		if !dnsclient.ValidateDomain(d) {
			t.Errorf("ValidateDomain(%q) = false, want true", d)
		}
	}

	invalid := []string{
		"",
		"localhost",
		"example",
		"-bad.example.com",
		"bad-.example.com",
		"exa mple.com",
		"example..com",
		"example.123",
		strings.Repeat("a", 64) + ".example.com",
		strings.Repeat("a.", 130) + "com",
	}
	for _, d := range invalid {
		if dnsclient.ValidateDomain(d) {
			t.Errorf("ValidateDomain(%q) = true, want false", d)
		}
	}
}

func TestDomainToASCII(t *testing.T) {
	got, err := dnsclient.DomainToASCII("bücher.example")
	if err != nil {
		t.Fatalf("DomainToASCII: %v", err)
	}
	if got != "xn--bcher-kva.example" {
		t.Errorf("punycode = %q", got)
	}

	got, err = dnsclient.DomainToASCII("Example.COM.")
	if err != nil {
		t.Fatalf("DomainToASCII: %v", err)
	}
	if got != "example.com" {
		t.Errorf("normalized = %q, want example.com", got)
	}
}

func TestIsPrivateIP(t *testing.T) {
	private := []string{"10.0.0.1", "192.168.1.1", "172.16.0.1", "127.0.0.1", "169.254.1.1", "0.0.0.0"}
	for _, ip := range private {
		if !dnsclient.IsPrivateIP(ip) {
			t.Errorf("IsPrivateIP(%q) = false, want true", ip)
		}
	}

	public := []string{"8.8.8.8", "1.1.1.1", "93.184.216.34", "not-an-ip"}
	for _, ip := range public {
		if dnsclient.IsPrivateIP(ip) {
			t.Errorf("IsPrivateIP(%q) = true, want false", ip)
		}
	}
}

func TestValidateURLTarget(t *testing.T) {
	if dnsclient.ValidateURLTarget("http://127.0.0.1/admin") {
		t.Error("loopback literal must be rejected")
	}
	if dnsclient.ValidateURLTarget("http://10.0.0.5:8080/") {
		t.Error("private literal must be rejected")
	}
	if dnsclient.ValidateURLTarget("not a url") {
		t.Error("unparseable URL must be rejected")
	}
	if !dnsclient.ValidateURLTarget("https://1.1.1.1/dns-query") {
		t.Error("public literal must be accepted")
	}
}
