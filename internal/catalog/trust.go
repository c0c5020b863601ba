// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package catalog

import "regexp"

// knownCAs maps CAA issuer domains to certificate authority display names.
var knownCAs = map[string]string{
	"letsencrypt.org":    "Let's Encrypt",
	"digicert.com":       "DigiCert",
	"sectigo.com":        "Sectigo",
	"comodoca.com":       "Sectigo",
	"globalsign.com":     "GlobalSign",
	"amazon.com":         "Amazon",
	"amazontrust.com":    "Amazon",
	"awstrust.com":       "Amazon",
	"amazonaws.com":      "Amazon",
	"pki.goog":           "Google Trust Services",
	"google.com":         "Google Trust Services",
	"entrust.net":        "Entrust",
	"godaddy.com":        "GoDaddy",
	"ssl.com":            "SSL.com",
	"certum.pl":          "Certum",
	"buypass.com":        "Buypass",
	"quovadisglobal.com": "QuoVadis",
	"actalis.it":         "Actalis",
}

// dmarcReporters maps report recipient domains to the DMARC analytics
// service operating them. A rua/ruf address landing here is a deliberate
// third-party data-sharing relationship, not a leak.
var dmarcReporters = map[string]string{
	"dmarcian.com":          "Dmarcian",
	"ag.dmarcian.com":       "Dmarcian",
	"valimail.com":          "Valimail",
	"vali.email":            "Valimail",
	"agari.com":             "Agari",
	"rua.agari.com":         "Agari",
	"proofpoint.com":        "Proofpoint",
	"emaildefense.proofpoint.com": "Proofpoint",
	"mimecast.com":          "Mimecast",
	"dmarc.postmarkapp.com": "Postmark",
	"ondmarc.com":           "Red Sift OnDMARC",
	"redsift.io":            "Red Sift OnDMARC",
	"easydmarc.com":         "EasyDMARC",
	"easydmarc.us":          "EasyDMARC",
	"dmarc.report":          "DMARC Report",
	"report-uri.com":        "Report URI",
	"uriports.com":          "URIports",
	"mailhardener.com":      "Mailhardener",
	"dmarcly.com":           "DMARCLY",
	"glockapps.com":         "GlockApps",
	"powerdmarc.com":        "PowerDMARC",
	"sendmarc.com":          "Sendmarc",
}

// asnVendors classifies AS name strings into cloud vendors. Order matters:
// first match wins.
var asnVendors = []ASNVendor{
	{Pattern: regexp.MustCompile(`(?i)amazon|aws`), Vendor: "Amazon AWS", Category: CategoryCloud},
	{Pattern: regexp.MustCompile(`(?i)microsoft|azure`), Vendor: "Microsoft Azure", Category: CategoryCloud},
	{Pattern: regexp.MustCompile(`(?i)google`), Vendor: "Google Cloud", Category: CategoryCloud},
	{Pattern: regexp.MustCompile(`(?i)cloudflare`), Vendor: "Cloudflare", Category: CategoryCloud},
	{Pattern: regexp.MustCompile(`(?i)fastly`), Vendor: "Fastly", Category: CategoryCloud},
	{Pattern: regexp.MustCompile(`(?i)akamai`), Vendor: "Akamai", Category: CategoryCloud},
	{Pattern: regexp.MustCompile(`(?i)digitalocean`), Vendor: "DigitalOcean", Category: CategoryCloud},
	{Pattern: regexp.MustCompile(`(?i)linode`), Vendor: "Linode", Category: CategoryCloud},
	{Pattern: regexp.MustCompile(`(?i)hetzner`), Vendor: "Hetzner", Category: CategoryCloud},
	{Pattern: regexp.MustCompile(`(?i)\bovh\b`), Vendor: "OVH", Category: CategoryCloud},
	{Pattern: regexp.MustCompile(`(?i)oracle`), Vendor: "Oracle Cloud", Category: CategoryCloud},
	{Pattern: regexp.MustCompile(`(?i)alibaba|aliyun`), Vendor: "Alibaba Cloud", Category: CategoryCloud},
	{Pattern: regexp.MustCompile(`(?i)vultr`), Vendor: "Vultr", Category: CategoryCloud},
}

// consolidatedVendors is the allow-list of cloud/infra providers whose
// registry id is derived from name alone, so a detection arriving as
// "infrastructure" (ASN) and one arriving as "cloud" (CNAME pattern)
// merge into a single entry.
var consolidatedVendors = map[string]bool{
	"Amazon AWS":      true,
	"Microsoft Azure": true,
	"Google Cloud":    true,
	"Cloudflare":      true,
	"Fastly":          true,
	"Akamai":          true,
	"DigitalOcean":    true,
	"Linode":          true,
	"Hetzner":         true,
	"OVH":             true,
	"Oracle Cloud":    true,
	"Alibaba Cloud":   true,
	"Vultr":           true,
}

// takeoverTargets lists CNAME suffixes for services where a dangling alias
// can be claimed by an attacker. Matching a suffix is a candidate signal
// only, never a live takeover verification.
var takeoverTargets = []TakeoverTarget{
	{Suffix: "github.io", Service: "GitHub Pages"},
	{Suffix: "herokuapp.com", Service: "Heroku"},
	{Suffix: "herokudns.com", Service: "Heroku"},
	{Suffix: "azurewebsites.net", Service: "Azure App Service"},
	{Suffix: "cloudapp.azure.com", Service: "Azure Cloud"},
	{Suffix: "cloudapp.net", Service: "Azure Cloud"},
	{Suffix: "trafficmanager.net", Service: "Azure Traffic Manager"},
	{Suffix: "azure-api.net", Service: "Azure API Management"},
	{Suffix: "azurefd.net", Service: "Azure Front Door"},
	{Suffix: "s3.amazonaws.com", Service: "AWS S3"},
	{Suffix: "s3-website", Service: "AWS S3"},
	{Suffix: "elasticbeanstalk.com", Service: "AWS Elastic Beanstalk"},
	{Suffix: "netlify.app", Service: "Netlify"},
	{Suffix: "netlify.com", Service: "Netlify"},
	{Suffix: "firebaseapp.com", Service: "Firebase"},
	{Suffix: "web.app", Service: "Firebase"},
	{Suffix: "fly.dev", Service: "Fly.io"},
	{Suffix: "ghost.io", Service: "Ghost"},
	{Suffix: "myshopify.com", Service: "Shopify"},
	{Suffix: "pantheonsite.io", Service: "Pantheon"},
	{Suffix: "surge.sh", Service: "Surge.sh"},
	{Suffix: "bitbucket.io", Service: "Bitbucket"},
	{Suffix: "zendesk.com", Service: "Zendesk"},
	{Suffix: "helpjuice.com", Service: "HelpJuice"},
	{Suffix: "helpscoutdocs.com", Service: "HelpScout"},
	{Suffix: "cargo.site", Service: "Cargo"},
	{Suffix: "statuspage.io", Service: "Statuspage"},
	{Suffix: "tumblr.com", Service: "Tumblr"},
	{Suffix: "wordpress.com", Service: "WordPress.com"},
	{Suffix: "smugmug.com", Service: "SmugMug"},
	{Suffix: "strikingly.com", Service: "Strikingly"},
	{Suffix: "webflow.io", Service: "Webflow"},
	{Suffix: "squarespace.com", Service: "Squarespace"},
	{Suffix: "unbounce.com", Service: "Unbounce"},
	{Suffix: "landingi.com", Service: "Landingi"},
	{Suffix: "appspot.com", Service: "Google App Engine"},
	{Suffix: "readthedocs.io", Service: "ReadTheDocs"},
	{Suffix: "wixdns.net", Service: "Wix"},
	{Suffix: "teamwork.com", Service: "Teamwork"},
}
